package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/errutil"
	"github.com/secmon-lab/vatracker/pkg/utils/safe"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, append(body, '\n'))
}

// maxJSONBody bounds request bodies of the JSON endpoints
const maxJSONBody = 1 << 20

// readJSON decodes the request body into v. Decode errors are validation errors.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(err, "invalid request body", goerr.T(usecase.TagValidation))
	}
	return nil
}

type profileResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	Role               string    `json:"role"`
	HourlyRate         float64   `json:"hourly_rate"`
	SlackWebhookURL    string    `json:"slack_webhook_url,omitempty"`
	SlackWebhookActive bool      `json:"slack_webhook_active"`
	CreatedAt          time.Time `json:"created_at"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		ID:                 p.ID,
		Email:              p.Email,
		FullName:           p.FullName,
		Role:               p.Role.String(),
		HourlyRate:         p.HourlyRate,
		SlackWebhookURL:    p.SlackWebhookURL,
		SlackWebhookActive: p.SlackWebhookURL != "",
		CreatedAt:          p.CreatedAt,
	}
}

type activityResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Date                string    `json:"date"`
	DMsSent             int       `json:"dms_sent"`
	ConnectionsSent     int       `json:"connections_sent"`
	ConnectionsAccepted int       `json:"connections_accepted"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toActivityResponse(a *model.DailyActivity) activityResponse {
	return activityResponse{
		ID:                  a.ID.String(),
		UserID:              a.UserID,
		Date:                a.Date.String(),
		DMsSent:             a.DMsSent,
		ConnectionsSent:     a.ConnectionsSent,
		ConnectionsAccepted: a.ConnectionsAccepted,
		UpdatedAt:           a.UpdatedAt,
	}
}

type goalsResponse struct {
	DMsPerDay         int `json:"dms_per_day"`
	ConnectionsPerDay int `json:"connections_per_day"`
}

func toGoalsResponse(g model.GoalSet) goalsResponse {
	return goalsResponse{DMsPerDay: g.DMs, ConnectionsPerDay: g.Connections}
}

type progressResponse struct {
	DMsPercent            float64 `json:"dms_percent"`
	ConnectionsPercent    float64 `json:"connections_percent"`
	DMsBarPercent         float64 `json:"dms_bar_percent"`
	ConnectionsBarPercent float64 `json:"connections_bar_percent"`
	DMsComplete           bool    `json:"dms_complete"`
	ConnectionsComplete   bool    `json:"connections_complete"`
	AllGoalsMet           bool    `json:"all_goals_met"`
	AcceptanceRate        int     `json:"acceptance_rate"`
}

func toProgressResponse(p model.Progress) progressResponse {
	return progressResponse{
		DMsPercent:            p.DMsPercent,
		ConnectionsPercent:    p.ConnectionsPercent,
		DMsBarPercent:         model.BarPercent(p.DMsPercent),
		ConnectionsBarPercent: model.BarPercent(p.ConnectionsPercent),
		DMsComplete:           p.DMsComplete,
		ConnectionsComplete:   p.ConnectionsComplete,
		AllGoalsMet:           p.AllGoalsMet,
		AcceptanceRate:        p.AcceptanceRate,
	}
}

type activityViewResponse struct {
	Activity activityResponse `json:"activity"`
	Goals    goalsResponse    `json:"goals"`
	Progress progressResponse `json:"progress"`
}

func toActivityView(a *model.DailyActivity, goals model.GoalSet) activityViewResponse {
	return activityViewResponse{
		Activity: toActivityResponse(a),
		Goals:    toGoalsResponse(goals),
		Progress: toProgressResponse(model.ComputeProgress(a, goals)),
	}
}

type contactResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	LinkedInURL string    `json:"linkedin_url"`
	Notes       string    `json:"notes"`
	Priority    string    `json:"priority"`
	ImageURLs   []string  `json:"image_urls"`
	DateAdded   string    `json:"date_added"`
	CreatedAt   time.Time `json:"created_at"`
	VAName      string    `json:"va_name,omitempty"`
}

func toContactResponse(c *model.Contact) contactResponse {
	images := c.ImageURLs
	if images == nil {
		images = []string{}
	}
	return contactResponse{
		ID:          c.ID.String(),
		UserID:      c.UserID,
		Name:        c.Name,
		LinkedInURL: c.LinkedInURL,
		Notes:       c.Notes,
		Priority:    c.Priority.Normalize().String(),
		ImageURLs:   images,
		DateAdded:   c.DateAdded.String(),
		CreatedAt:   c.CreatedAt,
		VAName:      c.OwnerName,
	}
}

type priorityGroupResponse struct {
	Priority string            `json:"priority"`
	Label    string            `json:"label"`
	Emoji    string            `json:"emoji"`
	Contacts []contactResponse `json:"contacts"`
}

type contactsResponse struct {
	Total  int                     `json:"total"`
	Groups []priorityGroupResponse `json:"groups"`
}

func toContactsResponse(groups []model.PriorityGroup) contactsResponse {
	resp := contactsResponse{Groups: make([]priorityGroupResponse, len(groups))}
	for i, g := range groups {
		contacts := make([]contactResponse, len(g.Contacts))
		for j, c := range g.Contacts {
			contacts[j] = toContactResponse(c)
		}
		resp.Groups[i] = priorityGroupResponse{
			Priority: g.Priority.String(),
			Label:    g.Priority.Label(),
			Emoji:    g.Priority.Emoji(),
			Contacts: contacts,
		}
		resp.Total += len(contacts)
	}
	return resp
}

type teamMemberResponse struct {
	VAID     string           `json:"va_id"`
	FullName string           `json:"full_name"`
	Email    string           `json:"email"`
	Activity activityResponse `json:"activity"`
	Goals    goalsResponse    `json:"goals"`
	Progress progressResponse `json:"progress"`
	Degraded bool             `json:"degraded,omitempty"`
}

type teamTotalsResponse struct {
	TotalDMs         int `json:"total_dms"`
	TotalConnections int `json:"total_connections"`
	TotalAccepted    int `json:"total_accepted"`
}

type teamResponse struct {
	Date    string               `json:"date"`
	Members []teamMemberResponse `json:"members"`
	Totals  teamTotalsResponse   `json:"totals"`
}

func toTeamResponse(s *model.TeamSummary) teamResponse {
	resp := teamResponse{
		Date:    s.Date.String(),
		Members: make([]teamMemberResponse, len(s.Members)),
		Totals: teamTotalsResponse{
			TotalDMs:         s.Totals.TotalDMs,
			TotalConnections: s.Totals.TotalConnections,
			TotalAccepted:    s.Totals.TotalAccepted,
		},
	}
	for i, m := range s.Members {
		resp.Members[i] = teamMemberResponse{
			VAID:     m.VAID,
			FullName: m.FullName,
			Email:    m.Email,
			Activity: toActivityResponse(m.Activity),
			Goals:    toGoalsResponse(m.Goals),
			Progress: toProgressResponse(m.Progress),
			Degraded: m.Degraded,
		}
	}
	return resp
}

type invitationResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	HourlyRate float64   `json:"hourly_rate"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	AcceptURL  string    `json:"accept_url,omitempty"`
}

func toInvitationResponse(inv *model.Invitation, acceptURL string) invitationResponse {
	return invitationResponse{
		ID:         string(inv.ID),
		Email:      inv.Email,
		FullName:   inv.FullName,
		HourlyRate: inv.HourlyRate,
		Status:     inv.Status.String(),
		ExpiresAt:  inv.ExpiresAt,
		AcceptURL:  acceptURL,
	}
}
