package validation

import "todo-api/internal/domain"

// MessageTitleRequired is reported when a create request has no "title" key.
const MessageTitleRequired = "Title is required"

// CreateTaskInput is the validated content of a create-task request body.
type CreateTaskInput struct {
	Title    string
	Priority string
}

// ValidateCreateTaskBody checks the keys and JSON types of a decoded
// create-task body. Value rules (empty title, unknown priority) are left to
// the store, which reports them with their own messages. The default priority
// applies only when the key is absent; an explicit null is not a priority.
func ValidateCreateTaskBody(body map[string]any) (CreateTaskInput, error) {
	validationError := NewValidationError()

	rawTitle, ok := body["title"]
	if !ok {
		validationError.AddRequiredError("title", MessageTitleRequired)
		return CreateTaskInput{}, validationError
	}
	title, ok := rawTitle.(string)
	if !ok {
		validationError.AddInvalidTypeError("title", rawTitle, "string")
		return CreateTaskInput{}, validationError
	}

	input := CreateTaskInput{Title: title, Priority: string(domain.DefaultPriority)}
	if rawPriority, ok := body["priority"]; ok {
		switch priority := rawPriority.(type) {
		case string:
			input.Priority = priority
		case nil:
			// The title is still checked first, as it is for a named priority.
			if err := NewTaskValidator().ValidateTitle(title); err != nil {
				return CreateTaskInput{}, err
			}
			validationError.AddInvalidValueError("priority", nil, MessageInvalidPriority)
			return CreateTaskInput{}, validationError
		default:
			validationError.AddInvalidTypeError("priority", rawPriority, "string")
			return CreateTaskInput{}, validationError
		}
	}

	return input, nil
}
