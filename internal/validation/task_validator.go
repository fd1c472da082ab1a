package validation

// Messages reported to API clients when task input is rejected.
const (
	MessageTitleEmpty      = "Task title cannot be empty"
	MessageInvalidPriority = "Priority must be: low, normal or high"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// ValidateTitle validates a task title for creation
func (tv *TaskValidator) ValidateTitle(title string) error {
	if !tv.validator.IsNonEmptyString(title) {
		validationError := NewValidationError()
		validationError.AddRequiredError("title", MessageTitleEmpty)
		return validationError
	}
	return nil
}

// ValidatePriority validates a priority name. The empty string is rejected;
// defaulting happens before validation.
func (tv *TaskValidator) ValidatePriority(priority string) error {
	if !tv.validator.IsValidPriority(priority) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("priority", priority, MessageInvalidPriority)
		return validationError
	}
	return nil
}

// ValidateTaskForCreation validates the inputs of a create request.
// The title is checked first and a bad title is reported on its own.
func (tv *TaskValidator) ValidateTaskForCreation(title, priority string) error {
	if err := tv.ValidateTitle(title); err != nil {
		return err
	}
	return tv.ValidatePriority(priority)
}

// GetValidTitle returns a trimmed title if valid
func (tv *TaskValidator) GetValidTitle(title string) (string, error) {
	if err := tv.ValidateTitle(title); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(title), nil
}
