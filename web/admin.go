package web

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-ucanto/did"

	"github.com/storacha/payme/internal/db/allowance"
	evdb "github.com/storacha/payme/internal/db/events"
	"github.com/storacha/payme/internal/service"
)

var log = logging.Logger("web")

//go:embed templates/admin.html.tmpl
var adminTemplateHTML string

//go:embed static/css/admin.css
var adminCSS string

const eventListLimit = 25

type adminDashboardData struct {
	OwnerDID   string
	SpenderDID string
	Allowance  *allowance.Record
	Events     []evdb.EventRecord
	Error      string
	CSS        string
}

func formatDate(t interface{}) string {
	// Handle time.Time
	if v, ok := t.(interface{ Format(string) string }); ok {
		return v.Format("2006-01-02 15:04 MST")
	}
	return fmt.Sprintf("%v", t)
}

// AdminHandler returns an HTTP handler for the admin dashboard
func AdminHandler(svc service.Service, eventTable evdb.EventTable) http.HandlerFunc {
	tmpl := template.Must(template.New("admin").Funcs(template.FuncMap{
		"formatDate": formatDate,
	}).Parse(adminTemplateHTML))

	render := func(w http.ResponseWriter, data adminDashboardData) {
		if err := tmpl.Execute(w, data); err != nil {
			log.Errorf("executing admin template: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := adminDashboardData{
			CSS: adminCSS,
		}

		ownerStr := r.URL.Query().Get("owner")
		if ownerStr == "" {
			// Show form only
			render(w, data)
			return
		}

		data.OwnerDID = ownerStr
		data.SpenderDID = r.URL.Query().Get("spender")

		owner, err := did.Parse(ownerStr)
		if err != nil {
			data.Error = fmt.Sprintf("Invalid owner DID: %v", err)
			render(w, data)
			return
		}

		if data.SpenderDID != "" {
			spender, err := did.Parse(data.SpenderDID)
			if err != nil {
				data.Error = fmt.Sprintf("Invalid spender DID: %v", err)
				render(w, data)
				return
			}

			record, err := svc.GetAllowance(r.Context(), owner, spender)
			if err != nil {
				data.Error = fmt.Sprintf("Error fetching allowance: %v", err)
				render(w, data)
				return
			}

			if record.NextChargeAt.IsZero() {
				data.Error = "No approval found for this owner/spender pair"
			} else {
				data.Allowance = &record
			}
		}

		events, err := eventTable.ListByOwner(r.Context(), owner, eventListLimit)
		if err != nil {
			data.Error = fmt.Sprintf("Error fetching events: %v", err)
			render(w, data)
			return
		}

		data.Events = events

		render(w, data)
	}
}
