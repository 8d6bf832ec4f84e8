package domain

// TaskType tells the embedding provider what a vector will be used for.
type TaskType string

const (
	// TaskRetrievalDocument is used for text being indexed.
	TaskRetrievalDocument TaskType = "RETRIEVAL_DOCUMENT"

	// TaskRetrievalQuery is used for query text at search time.
	TaskRetrievalQuery TaskType = "RETRIEVAL_QUERY"
)

// String returns the string representation.
func (t TaskType) String() string {
	return string(t)
}

// IsValid returns true if the task type is recognised.
func (t TaskType) IsValid() bool {
	return t == TaskRetrievalDocument || t == TaskRetrievalQuery
}
