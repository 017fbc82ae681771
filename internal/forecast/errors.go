package forecast

import "fmt"

// InsufficientDataError reports a training frame below the minimum row
// count.
type InsufficientDataError struct {
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for training: need at least %d rows, got %d", e.Required, e.Got)
}

// NotTrainedError reports an operation that requires a fitted model.
type NotTrainedError struct {
	Op string
}

func (e *NotTrainedError) Error() string {
	return fmt.Sprintf("model must be trained before %s", e.Op)
}

// TrainingError wraps a model-fitting failure.
type TrainingError struct {
	Err error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("model training failed: %v", e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}
