package azure

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/milymoreno/timesheet/internal/logging"
	"github.com/milymoreno/timesheet/pkg/models"
)

const wiqlDateFormat = "2006-01-02"

// runWiql executes a wiql query against the project and returns the
// matching work item ids.
func (c *Client) runWiql(ctx context.Context, query string) ([]int, error) {
	project, err := c.DefaultProject(ctx)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/_apis/wit/wiql?api-version=%s", project, apiVersion)
	logging.Debug("wiql query", "query", query)

	var resp wiqlResponse
	if err := c.doRequest(ctx, http.MethodPost, path, "", wiqlRequest{Query: query}, &resp); err != nil {
		return nil, fmt.Errorf("executing wiql query: %w", err)
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, item := range resp.WorkItems {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// workItemDetails fetches full work items by id, optionally expanding
// hierarchy relations.
func (c *Client) workItemDetails(ctx context.Context, ids []int, expandRelations bool) ([]workItemDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}

	path := fmt.Sprintf("/_apis/wit/workitems?ids=%s&api-version=%s", strings.Join(idStrs, ","), apiVersion)
	if expandRelations {
		path = fmt.Sprintf("/_apis/wit/workitems?ids=%s&$expand=relations&api-version=%s", strings.Join(idStrs, ","), apiVersion)
	}

	var list workItemList
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &list); err != nil {
		return nil, fmt.Errorf("fetching work item details: %w", err)
	}
	return list.Value, nil
}

// buildTaskPatch assembles the JSON Patch document for creating a Task
// work item. The finish timestamp is realigned onto the target date
// when the two disagree on the day.
func (c *Client) buildTaskPatch(req models.TaskRequest) []patchOp {
	finish := req.FinishTime
	if finish.Year() != req.TargetDate.Year() || finish.YearDay() != req.TargetDate.YearDay() {
		finish = time.Date(
			req.TargetDate.Year(), req.TargetDate.Month(), req.TargetDate.Day(),
			finish.Hour(), finish.Minute(), finish.Second(), 0, finish.Location())
	}

	return []patchOp{
		{Op: "add", Path: "/fields/System.Title", Value: req.Title},
		{Op: "add", Path: "/fields/System.Description", Value: req.Description},
		{Op: "add", Path: "/fields/System.AssignedTo", Value: req.Assignee},
		{Op: "add", Path: "/fields/Microsoft.VSTS.Scheduling.OriginalEstimate", Value: req.Hours},
		{Op: "add", Path: "/fields/Microsoft.VSTS.Scheduling.CompletedWork", Value: req.Hours},
		{Op: "add", Path: "/fields/Microsoft.VSTS.Scheduling.FinishDate", Value: finish.Format(time.RFC3339)},
		{Op: "add", Path: "/fields/Microsoft.VSTS.Scheduling.TargetDate", Value: req.TargetDate.Format(wiqlDateFormat)},
		{Op: "add", Path: "/fields/System.State", Value: "New"},
		{Op: "add", Path: "/relations/-", Value: relation{
			Rel:        relHierarchyReverse,
			URL:        fmt.Sprintf("%s/_apis/wit/workItems/%d", c.baseURL, req.EnablerID),
			Attributes: map[string]any{"comment": "Vinculado al habilitador semanal"},
		}},
	}
}

// CreateTask creates one Task work item linked under its weekly enabler
// and returns the created id and browser URL.
func (c *Client) CreateTask(ctx context.Context, req models.TaskRequest) (*models.CreatedTask, error) {
	project, err := c.DefaultProject(ctx)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/_apis/wit/workitems/$Task?api-version=%s", project, apiVersion)

	var resp createResponse
	err = c.doRequest(ctx, http.MethodPatch, path, "application/json-patch+json", c.buildTaskPatch(req), &resp)
	if err != nil {
		return nil, err
	}

	return &models.CreatedTask{
		Title:       req.Title,
		Description: req.Description,
		Hours:       req.Hours,
		ID:          resp.ID,
		URL:         resp.Links.HTML.Href,
	}, nil
}

// SetState transitions one work item to the given state.
func (c *Client) SetState(ctx context.Context, id int, state string) error {
	project, err := c.DefaultProject(ctx)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/%s/_apis/wit/workitems/%d?api-version=%s", project, id, apiVersion)
	patch := []patchOp{
		{Op: "add", Path: "/fields/System.State", Value: state},
	}
	return c.doRequest(ctx, http.MethodPatch, path, "application/json-patch+json", patch, nil)
}

// OpenTasks returns the user's Task/Enabler items still in state "New"
// whose target and finish dates both fall on the given day.
func (c *Client) OpenTasks(ctx context.Context, user string, date time.Time) ([]models.WorkItem, error) {
	day := date.Format(wiqlDateFormat)
	query := fmt.Sprintf(`
	SELECT [System.Id], [System.Title], [System.State], [Microsoft.VSTS.Scheduling.OriginalEstimate],
	       [Microsoft.VSTS.Scheduling.FinishDate], [Microsoft.VSTS.Scheduling.TargetDate]
	FROM WorkItems
	WHERE ([System.WorkItemType] = 'Task' OR [System.WorkItemType] = 'Enabler')
	AND [System.AssignedTo] CONTAINS '%s'
	AND [System.State] = 'New'
	AND [Microsoft.VSTS.Scheduling.TargetDate] = '%s'
	AND [Microsoft.VSTS.Scheduling.FinishDate] = '%s'`, user, day, day)

	ids, err := c.runWiql(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		logging.Info("no open tasks found", "user", user, "date", day)
		return nil, nil
	}

	details, err := c.workItemDetails(ctx, ids, false)
	if err != nil {
		return nil, err
	}

	items := make([]models.WorkItem, 0, len(details))
	for _, d := range details {
		items = append(items, models.WorkItem{
			ID:         d.ID,
			Type:       d.Fields.Type,
			Title:      d.Fields.Title,
			State:      d.Fields.State,
			AssignedTo: d.Fields.AssignedTo.DisplayName,
			Hours:      d.Fields.OriginalEstimate,
		})
	}
	return items, nil
}

// LoggedHours sums the completed work across the user's Task and
// Enabler items for the date. Enablers that delegate to child items are
// skipped so their hours are not counted twice.
func (c *Client) LoggedHours(ctx context.Context, user string, date time.Time) (models.DayHours, error) {
	day := date.Format(wiqlDateFormat)
	query := fmt.Sprintf(`
	SELECT [System.Id], [System.Title], [System.WorkItemType], [Microsoft.VSTS.Scheduling.CompletedWork]
	FROM WorkItems
	WHERE [System.AssignedTo] CONTAINS '%s'
	AND ([System.WorkItemType] = 'Task' OR [System.WorkItemType] = 'Enabler')
	AND [Microsoft.VSTS.Scheduling.TargetDate] = '%s'
	AND [Microsoft.VSTS.Scheduling.FinishDate] = '%s'`, user, day, day)

	ids, err := c.runWiql(ctx, query)
	if err != nil {
		return models.DayHours{}, err
	}

	details, err := c.workItemDetails(ctx, ids, true)
	if err != nil {
		return models.DayHours{}, err
	}

	summary := models.DayHours{Items: []models.LoggedEntry{}}
	for _, d := range details {
		if d.Fields.Type == "Enabler" && hasChildLinks(d.Relations) {
			logging.Debug("enabler skipped, has child items", "id", d.ID)
			continue
		}

		summary.Total += d.Fields.CompletedWork
		summary.Items = append(summary.Items, models.LoggedEntry{
			ID:    d.ID,
			Type:  d.Fields.Type,
			Title: d.Fields.Title,
			Hours: d.Fields.CompletedWork,
		})
	}

	summary.Total = round2(summary.Total)
	logging.Info("logged hours computed", "user", user, "date", day, "total", summary.Total)
	return summary, nil
}

// EnablerHours reports the hours registered on the date under one
// specific weekly enabler, identified through reverse hierarchy links.
func (c *Client) EnablerHours(ctx context.Context, user string, date time.Time, enablerID int) (models.EnablerHours, error) {
	day := date.Format(wiqlDateFormat)
	query := fmt.Sprintf(`
	SELECT [System.Id], [System.Title], [System.State]
	FROM WorkItems
	WHERE [System.AssignedTo] CONTAINS '%s'
	AND ([System.WorkItemType] = 'Task' OR [System.WorkItemType] = 'Enabler')
	AND [System.State] <> ''
	AND [Microsoft.VSTS.Scheduling.TargetDate] = '%s'
	AND [Microsoft.VSTS.Scheduling.FinishDate] = '%s'`, user, day, day)

	ids, err := c.runWiql(ctx, query)
	if err != nil {
		return models.EnablerHours{}, err
	}

	result := models.EnablerHours{Tasks: []models.EnablerTaskEntry{}, Status: "incompleto"}
	if len(ids) == 0 {
		return result, nil
	}

	details, err := c.workItemDetails(ctx, ids, true)
	if err != nil {
		return models.EnablerHours{}, err
	}

	parentSuffix := fmt.Sprintf("/%d", enablerID)
	for _, d := range details {
		for _, rel := range d.Relations {
			if rel.Rel != relHierarchyReverse || !strings.HasSuffix(rel.URL, parentSuffix) {
				continue
			}
			result.Total += d.Fields.OriginalEstimate
			result.Tasks = append(result.Tasks, models.EnablerTaskEntry{
				ID:    d.ID,
				Title: d.Fields.Title,
				State: d.Fields.State,
				Hours: d.Fields.OriginalEstimate,
			})
			break
		}
	}

	result.Total = round2(result.Total)
	switch {
	case result.Total == 9.0:
		result.Status = "completo"
	case result.Total > 0:
		result.Status = "parcial"
	}
	return result, nil
}

func hasChildLinks(relations []relation) bool {
	for _, rel := range relations {
		if rel.Rel == relHierarchyForward {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
