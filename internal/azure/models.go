package azure

// Wire representations of the Azure DevOps REST API payloads consumed
// by this gateway. Field paths follow the work item tracking schema.

type projectList struct {
	Value []project `json:"value"`
}

type project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wiqlRequest struct {
	Query string `json:"query"`
}

type wiqlResponse struct {
	WorkItems []workItemRef `json:"workItems"`
}

type workItemRef struct {
	ID int `json:"id"`
}

type workItemList struct {
	Value []workItemDetail `json:"value"`
}

type workItemDetail struct {
	ID        int            `json:"id"`
	Fields    workItemFields `json:"fields"`
	Relations []relation     `json:"relations"`
}

type workItemFields struct {
	Title            string      `json:"System.Title"`
	Type             string      `json:"System.WorkItemType"`
	State            string      `json:"System.State"`
	AssignedTo       identityRef `json:"System.AssignedTo"`
	OriginalEstimate float64     `json:"Microsoft.VSTS.Scheduling.OriginalEstimate"`
	CompletedWork    float64     `json:"Microsoft.VSTS.Scheduling.CompletedWork"`
}

type identityRef struct {
	DisplayName string `json:"displayName"`
}

type relation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

const (
	relHierarchyForward = "System.LinkTypes.Hierarchy-Forward"
	relHierarchyReverse = "System.LinkTypes.Hierarchy-Reverse"
)

// patchOp is one JSON Patch operation for work item mutation.
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type createResponse struct {
	ID    int `json:"id"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}
