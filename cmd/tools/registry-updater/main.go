// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"credit-workers/internal/common/validation"
	ce "credit-workers/internal/workers/credit/check-eligibility"
	cl "credit-workers/internal/workers/credit/create-loan"
	rc "credit-workers/internal/workers/credit/register-customer"
	vcl "credit-workers/internal/workers/credit/view-customer-loans"
	vl "credit-workers/internal/workers/credit/view-loan"
	"credit-workers/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

type workerSpec struct {
	taskType    string
	displayName string
	description string
	schema      validation.JSONSchema
	errorCodes  []string
	timeout     string
	tags        []string
}

func workerSpecs() []workerSpec {
	return []workerSpec{
		{
			taskType:    ce.TaskType,
			displayName: "Check Eligibility",
			description: "Scores the customer and returns the approval decision, corrected rate and installment without creating a loan",
			schema:      ce.GetInputSchema(),
			errorCodes:  []string{"CUSTOMER_NOT_FOUND", "VALIDATION_FAILED", "DATABASE_ERROR"},
			timeout:     "30s",
			tags:        []string{"scoring", "read-only"},
		},
		{
			taskType:    cl.TaskType,
			displayName: "Create Loan",
			description: "Evaluates eligibility under the customer lock and stores the loan when approved",
			schema:      cl.GetInputSchema(),
			errorCodes:  []string{"CUSTOMER_NOT_FOUND", "VALIDATION_FAILED", "DATABASE_ERROR"},
			timeout:     "30s",
			tags:        []string{"scoring", "write"},
		},
		{
			taskType:    rc.TaskType,
			displayName: "Register Customer",
			description: "Creates a customer with an approved limit of 36 times monthly income rounded to the nearest lakh",
			schema:      rc.GetInputSchema(),
			errorCodes:  []string{"DUPLICATE_CUSTOMER", "VALIDATION_FAILED", "DATABASE_ERROR"},
			timeout:     "30s",
			tags:        []string{"customer", "write"},
		},
		{
			taskType:    vl.TaskType,
			displayName: "View Loan",
			description: "Returns a loan with its customer",
			schema:      vl.GetInputSchema(),
			errorCodes:  []string{"LOAN_NOT_FOUND", "VALIDATION_FAILED", "DATABASE_ERROR"},
			timeout:     "10s",
			tags:        []string{"loan", "read-only"},
		},
		{
			taskType:    vcl.TaskType,
			displayName: "View Customer Loans",
			description: "Lists the customer's approved loans with repayments outstanding",
			schema:      vcl.GetInputSchema(),
			errorCodes:  []string{"CUSTOMER_NOT_FOUND", "VALIDATION_FAILED", "DATABASE_ERROR"},
			timeout:     "10s",
			tags:        []string{"loan", "read-only"},
		},
	}
}

func main() {
	syncCmd := flag.NewFlagSet("sync", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	syncPath := syncCmd.String("path", defaultPath, "Path to registry file")
	syncVersion := syncCmd.String("version", "1.0.0", "Version stamped on synced activities")

	updatePath := updateCmd.String("path", defaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "sync":
		_ = syncCmd.Parse(os.Args[2:])
		err = syncRegistry(*syncPath, *syncVersion, time.Now())

	case "update":
		_ = updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = updateActivity(*updatePath, *idUpdate, *field, *value, time.Now())

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		err = validateRegistry(*validatePath)

	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// syncRegistry writes an activity for every credit worker, keeping the
// implementation status of entries that already exist.
func syncRegistry(path, version string, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	for _, spec := range workerSpecs() {
		a, err := toActivity(spec, version)
		if err != nil {
			return err
		}
		if existing, ok := reg.Find(a.ID); ok && existing.ImplementationStatus != "" {
			a.ImplementationStatus = existing.ImplementationStatus
		}
		replaced := reg.Upsert(a)
		fmt.Printf("%s %s\n", map[bool]string{true: "updated", false: "added"}[replaced], a.ID)
	}

	reg.LastUpdated = now.Format(time.RFC3339)
	return reg.Save(path)
}

func toActivity(spec workerSpec, version string) (registry.Activity, error) {
	raw, err := json.Marshal(spec.schema)
	if err != nil {
		return registry.Activity{}, fmt.Errorf("marshal %s schema: %w", spec.taskType, err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return registry.Activity{}, fmt.Errorf("decode %s schema: %w", spec.taskType, err)
	}

	return registry.Activity{
		ID:                   spec.taskType,
		DisplayName:          spec.displayName,
		Description:          spec.description,
		Category:             "credit",
		Version:              version,
		TaskType:             spec.taskType,
		ImplementationStatus: "completed",
		InputSchema:          schema,
		ErrorCodes:           spec.errorCodes,
		Timeout:              spec.timeout,
		Retries:              3,
		Tags:                 spec.tags,
	}, nil
}

func updateActivity(path, id, field, value string, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	a, ok := reg.Find(id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = now.Format(time.RFC3339)
	return reg.Save(path)
}

// validateRegistry checks the file and that every credit worker is listed.
func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	for _, spec := range workerSpecs() {
		if _, ok := reg.Find(spec.taskType); !ok {
			return fmt.Errorf("worker %s is not registered", spec.taskType)
		}
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  sync     Write an activity for every credit worker from its input schema
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater sync -path configs/activity-registry.json
  registry-updater update -id create-loan -field status -value verified
  registry-updater validate -path configs/activity-registry.json`)
}
