package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/milymoreno/timesheet/internal/logging"
)

// ErrEnablerNotFound is returned when no weekly enabler matches the
// requested date.
var ErrEnablerNotFound = errors.New("no weekly enabler found for the given date")

// enablerMarker is the phrase carried by every weekly enabler title.
const enablerMarker = "PEDIDOS EXPERTISE"

// devKeywords narrows the enabler search to the development track.
var devKeywords = []string{"dev", "desarrollo", "develop"}

// FindWeeklyEnabler searches for an open Enabler work item active on
// the given date: its title must contain the weekly marker plus a
// development keyword, and it must be assigned to one of the candidate
// users. Returns ErrEnablerNotFound when nothing qualifies.
func (c *Client) FindWeeklyEnabler(ctx context.Context, date time.Time, candidates []string) (int, error) {
	day := date.Format(wiqlDateFormat)
	logging.Info("searching weekly enabler", "date", day, "candidates", candidates)

	query := fmt.Sprintf(`
	SELECT [System.Id], [System.Title], [System.State],
	       [Microsoft.VSTS.Scheduling.TargetDate],
	       [Microsoft.VSTS.Scheduling.StartDate],
	       [System.AssignedTo]
	FROM WorkItems
	WHERE [System.WorkItemType] = 'Enabler'
	AND [System.Title] CONTAINS '%s'
	AND [Microsoft.VSTS.Scheduling.StartDate] <= '%s'
	AND [Microsoft.VSTS.Scheduling.TargetDate] >= '%s'`, enablerMarker, day, day)

	ids, err := c.runWiql(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("querying enablers: %w", err)
	}
	if len(ids) == 0 {
		return 0, ErrEnablerNotFound
	}

	details, err := c.workItemDetails(ctx, ids, false)
	if err != nil {
		return 0, fmt.Errorf("fetching enabler details: %w", err)
	}

	marker := strings.ToLower(enablerMarker)
	for _, d := range details {
		title := strings.ToLower(d.Fields.Title)
		if !strings.Contains(title, marker) || !containsAnyKeyword(title) {
			continue
		}
		if !assignedToCandidate(d.Fields.AssignedTo.DisplayName, candidates) {
			continue
		}

		logging.Info("weekly enabler found", "id", d.ID, "title", d.Fields.Title)
		return d.ID, nil
	}

	return 0, ErrEnablerNotFound
}

func containsAnyKeyword(title string) bool {
	for _, kw := range devKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func assignedToCandidate(assignee string, candidates []string) bool {
	assignee = strings.TrimSpace(assignee)
	for _, candidate := range candidates {
		if candidate = strings.TrimSpace(candidate); candidate == "" {
			continue
		}
		if strings.Contains(assignee, candidate) {
			return true
		}
	}
	return false
}
