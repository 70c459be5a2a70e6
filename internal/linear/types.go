package linear

// Team is a Linear team.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// WorkflowState is one stage of a team's issue lifecycle.
type WorkflowState struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Position float64 `json:"position"`
}

// Label is an issue label scoped to a team.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is a Linear project; migrated Pivotal epics become projects.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Issue is a Linear issue. SortOrder is the manual ordering value within a
// workflow state column.
type Issue struct {
	ID          string  `json:"id"`
	Identifier  string  `json:"identifier"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	SortOrder   float64 `json:"sortOrder"`
}

// User is a Linear workspace member.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
}

// UploadSlot is a pre-signed file upload target returned by the fileUpload
// mutation. The bytes are PUT to UploadURL; AssetURL is the permanent
// address once the upload lands.
type UploadSlot struct {
	UploadURL   string         `json:"uploadUrl"`
	AssetURL    string         `json:"assetUrl"`
	ContentType string         `json:"contentType"`
	Headers     []UploadHeader `json:"headers"`
}

// UploadHeader is one extra header the pre-signed PUT must carry.
type UploadHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// pageInfo is the GraphQL cursor-pagination envelope.
type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}
