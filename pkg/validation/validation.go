package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report json names so errors match what clients sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("layout", func(fl validator.FieldLevel) bool {
		return models.LayoutAlgorithm(fl.Field().String()).IsValid()
	})

	_ = v.RegisterValidation("community", func(fl validator.FieldLevel) bool {
		return models.CommunityMethod(fl.Field().String()).IsValid()
	})

	return v
}

// LoadAndValidateRequest reads an analysis request from a JSON or YAML file
// and validates it
func LoadAndValidateRequest(filePath string) (*models.AnalysisRequest, error) {
	if err := ValidateFileFormat(filePath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	var req models.AnalysisRequest
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse request file %s: %w", filePath, err)
	}

	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidateRequest checks an analysis request before any graph work. All
// problems are reported together as models.ValidationErrors.
func ValidateRequest(req *models.AnalysisRequest) error {
	if req == nil {
		return models.ValidationErrors{{Field: "request", Message: "request cannot be empty"}}
	}

	var errs models.ValidationErrors

	if err := validate.Struct(req); err != nil {
		errs = append(errs, formatValidationError(err)...)
	}

	errs = append(errs, validateFields(req.Fields)...)
	errs = append(errs, validateValueKeys(req)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateFields rejects blank and duplicate field ids
func validateFields(fields []models.FieldSpec) models.ValidationErrors {
	var errs models.ValidationErrors
	seen := make(map[string]int, len(fields))

	for i, f := range fields {
		name := fmt.Sprintf("fields[%d].field_id", i)
		if f.FieldID != "" && strings.TrimSpace(f.FieldID) == "" {
			errs = append(errs, models.ValidationError{
				Field:   name,
				Message: "field id cannot be whitespace",
				Value:   f.FieldID,
			})
			continue
		}
		if first, dup := seen[f.FieldID]; dup && f.FieldID != "" {
			errs = append(errs, models.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("duplicate field id, first declared at fields[%d]", first),
				Value:   f.FieldID,
			})
			continue
		}
		seen[f.FieldID] = i
	}
	return errs
}

// validateValueKeys rejects data keyed by a field that was never declared
func validateValueKeys(req *models.AnalysisRequest) models.ValidationErrors {
	declared := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		declared[f.FieldID] = true
	}

	var errs models.ValidationErrors
	check := func(section string, keys []string) {
		sort.Strings(keys)
		for _, key := range keys {
			if !declared[key] {
				errs = append(errs, models.ValidationError{
					Field:   fmt.Sprintf("%s.%s", section, key),
					Message: "values supplied for an undeclared field",
					Value:   key,
				})
			}
		}
	}

	valueKeys := make([]string, 0, len(req.Values))
	for k := range req.Values {
		valueKeys = append(valueKeys, k)
	}
	textKeys := make([]string, 0, len(req.Text))
	for k := range req.Text {
		textKeys = append(textKeys, k)
	}
	check("values", valueKeys)
	check("text", textKeys)
	return errs
}

// formatValidationError converts validator errors into the engine's error type
func formatValidationError(err error) models.ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	out := make(models.ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		out = append(out, models.ValidationError{
			Field:   fieldPath(e.Namespace()),
			Message: errorMessage(e),
			Value:   valueString(e.Value()),
		})
	}
	return out
}

// fieldPath drops the root struct name: "AnalysisRequest.fields[0].field_id"
// becomes "fields[0].field_id"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func errorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "layout":
		return fmt.Sprintf("unsupported layout algorithm, expected one of %v", models.SupportedLayouts())
	case "community":
		return fmt.Sprintf("unsupported community method, expected one of %v", models.SupportedCommunityMethods())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}

func valueString(v interface{}) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return ""
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
		return fmt.Sprint(rv.Elem().Interface())
	case reflect.Slice, reflect.Map, reflect.Struct:
		return ""
	}
	return fmt.Sprint(v)
}

// ValidateFileFormat checks that a request file exists and has a supported
// extension
func ValidateFileFormat(filePath string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return fmt.Errorf("request file must be .json, .yaml or .yml, got: %q", ext)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("request file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access request file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("request path is a directory: %s", filePath)
	}
	return nil
}

// ValidateOutputPath checks that the directory holding an output file exists
// (creating it if needed) and accepts writes
func ValidateOutputPath(outputPath string) error {
	dir := filepath.Dir(outputPath)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output parent is not a directory: %s", dir)
	}

	scratch, err := os.CreateTemp(dir, ".linkgraph-*")
	if err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}
	scratch.Close()
	os.Remove(scratch.Name())
	return nil
}
