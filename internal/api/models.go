package api

// Query parameters accepted by the /config2 routes.
const (
	paramOperatorID  = "id"
	paramProject     = "project"
	paramKey         = "key"
	paramKeys        = "keys"
	paramPrefix      = "prefix"
	paramDescription = "desc"
	paramEnv         = "env"
	paramGroup       = "group"
	paramValue       = "value"
)

// CreateConfigRequest holds the parameters of /config2/create.
type CreateConfigRequest struct {
	OperatorID  int64  `validate:"required"`
	Project     string `validate:"required"`
	Key         string `validate:"required,max=255"`
	Description string
}

// SetValueRequest holds the parameters of /config2/set.
type SetValueRequest struct {
	OperatorID int64  `validate:"required"`
	Env        string `validate:"required"`
	Key        string `validate:"required,max=255"`
	Group      string
	// Value may be empty but must be present in the query.
	Value *string `validate:"required"`
}

// ListRequest holds the parameters of /config2/list. OperatorID is optional.
type ListRequest struct {
	OperatorID int64
	Prefix     string
}

// GetRequest holds the parameters of /config2/get.
type GetRequest struct {
	OperatorID int64  `validate:"required"`
	Env        string `validate:"required"`
	Key        string
	Keys       string
	Prefix     string
	Group      string
}

// UpdateDescriptionRequest holds the parameters of /config2/desc.
type UpdateDescriptionRequest struct {
	OperatorID  int64  `validate:"required"`
	Key         string `validate:"required,max=255"`
	Description string
}
