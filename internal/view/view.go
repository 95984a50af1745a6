// Package view holds the templ components of the user desk. Page renders the
// whole document; Manager is the fragment every Datastar response patches.
package view

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/msomdec/user-desk/internal/domain"
)

// ManagerID is the DOM id of the fragment every mutation re-renders.
const ManagerID = "user-manager"

// FormSignals is the client-side form state bound to the four inputs.
// FormVersion echoes the workspace's form version back with every request.
type FormSignals struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	FormVersion int64  `json:"formVersion"`
}

// SignalsFor returns the form state matching the workspace's current mode.
func SignalsFor(ws *domain.Workspace) FormSignals {
	d := ws.FormDraft()
	return FormSignals{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Department:  d.Department,
		FormVersion: ws.FormVersion,
	}
}

// Draft converts form state back into a domain draft.
func (s FormSignals) Draft() domain.Draft {
	return domain.Draft{
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Email:      s.Email,
		Department: s.Department,
	}
}

func signalsJSON(ws *domain.Workspace) (string, error) {
	b, err := json.Marshal(SignalsFor(ws))
	if err != nil {
		return "", fmt.Errorf("encode form signals: %w", err)
	}
	return string(b), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func rowID(id int64) string {
	return "user-" + formatID(id)
}

func editAction(id int64) string {
	return "@post('/users/" + formatID(id) + "/edit')"
}

func deleteAction(id int64) string {
	return "@delete('/users/" + formatID(id) + "')"
}

func updateAction(id int64) string {
	return "@put('/users/" + formatID(id) + "')"
}
