package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// UnknownRole is the synthetic role for rows with no usable role value.
const UnknownRole = "Unknown Role"

// ApplicantKey is the "sheetId-row" key used by tallies and selection maps.
func ApplicantKey(sheetID string, row int) string {
	return sheetID + "-" + strconv.Itoa(row)
}

// Request types

type CreateSheetRequest struct {
	Year     string `json:"year"`
	Term     string `json:"term"`
	SheetURL string `json:"sheetUrl"`
}

type AddVoteRequest struct {
	SheetID      string `json:"sheetId"`
	ApplicantRow int    `json:"applicantRow"`
	VoterName    string `json:"voterName"`
}

// Pointers distinguish "false" from "missing"; both flags are required.
type UpdateSelectionRequest struct {
	SelectedForInterview *bool `json:"selectedForInterview"`
	SelectedForHiring    *bool `json:"selectedForHiring"`
}

type UpdateNoteRequest struct {
	Text *string `json:"text"`
}

// Response types

type AddVoteResponse struct {
	Message    string   `json:"message"`
	Voters     []string `json:"voters"`
	TotalVotes int      `json:"totalVotes"`
}

type DeleteVoteResponse struct {
	Message         string   `json:"message"`
	DeletedVoter    string   `json:"deletedVoter"`
	RemainingVoters []string `json:"remainingVoters"`
}

type DeleteSheetResponse struct {
	Message           string `json:"message"`
	DeletedSheetID    string `json:"deletedSheetId"`
	RemovedVotes      int64  `json:"removedVotes"`
	RemovedSelections int64  `json:"removedSelections"`
	RemovedNotes      int64  `json:"removedNotes"`
}

// ApplicantsResponse is the aggregated, role-grouped candidate view.
// Roles lists the keys of Applicants in first-seen order.
type ApplicantsResponse struct {
	Headers         []string               `json:"headers"`
	Roles           []string               `json:"roles"`
	Applicants      map[string][]Candidate `json:"applicants"`
	TotalApplicants int                    `json:"totalApplicants"`
}

type AuthStatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          *Identity  `json:"user,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type RefreshResponse struct {
	Message   string    `json:"message"`
	User      Identity  `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Domain types

type Sheet struct {
	ID              string    `json:"id"`
	Year            string    `json:"year"`
	Term            string    `json:"term"`
	SheetURL        string    `json:"sheetUrl"`
	ExternalSheetID string    `json:"sheetId"`
	Title           string    `json:"sheetTitle"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Candidate is one applicant derived from a spreadsheet row. It is never
// persisted; RowIndex is the only link to stored votes and selections.
type Candidate struct {
	Fields   map[string]string
	RowIndex int
	Role     string
}

// MarshalJSON flattens Fields next to rowIndex and role, the shape the
// browser client renders. rowIndex and role win over same-named headers.
func (c Candidate) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(c.Fields)+2)
	for k, v := range c.Fields {
		flat[k] = v
	}
	flat["rowIndex"] = c.RowIndex
	flat["role"] = c.Role
	return json.Marshal(flat)
}

func (c *Candidate) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	c.Fields = make(map[string]string, len(flat))
	for k, raw := range flat {
		var err error
		switch k {
		case "rowIndex":
			err = json.Unmarshal(raw, &c.RowIndex)
		case "role":
			err = json.Unmarshal(raw, &c.Role)
		default:
			var v string
			err = json.Unmarshal(raw, &v)
			c.Fields[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type Selection struct {
	SelectedForInterview bool       `json:"selectedForInterview"`
	SelectedForHiring    bool       `json:"selectedForHiring"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

type Note struct {
	Text      string     `json:"text"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Identity is the verified reviewer identity rendered by clients.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	// Retryable marks failures the caller may retry unchanged.
	Retryable bool `json:"retryable,omitempty"`
}
