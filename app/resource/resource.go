package resource

// Status enumerates the states a Resource can be in.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Resource wraps the outcome of an asynchronous operation. Data is only
// meaningful on StatusSuccess, Message only on StatusError.
type Resource[T any] struct {
	Status  Status
	Data    T
	Message string
}

func Loading[T any]() Resource[T] {
	return Resource[T]{Status: StatusLoading}
}

func Success[T any](data T) Resource[T] {
	return Resource[T]{Status: StatusSuccess, Data: data}
}

func Error[T any](message string) Resource[T] {
	return Resource[T]{Status: StatusError, Message: message}
}
