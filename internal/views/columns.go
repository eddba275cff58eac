package views

import (
	"strings"

	"github.com/ryu-ryuk/omnidim-go/internal/output"
)

// Response fields that hold each resource list.
var (
	CallListKeys        = []string{"calls", "call_log_data", "data"}
	SimulationListKeys  = []string{"simulations", "data"}
	FileListKeys        = []string{"files", "data"}
	PhoneNumberListKeys = []string{"phone_numbers", "numbers", "data"}
	IntegrationListKeys = []string{"integrations", "data"}
)

// CallColumns lays out call logs.
func CallColumns() []output.Column {
	return []output.Column{
		output.Field("ID", "id"),
		output.Field("Agent", "agent_name", "agent_id"),
		output.Field("To Number", "to_number", "phone_number"),
		output.Field("Status", "status", "call_status"),
		{Header: "Duration", Value: func(row map[string]any) string {
			d := output.Field("", "duration", "call_duration").Value(row)
			if d == "" || d == "0" {
				return "N/A"
			}
			return d + "s"
		}},
		{Header: "Date", Value: func(row map[string]any) string {
			return datePart(output.Field("", "created_at", "start_time").Value(row))
		}},
	}
}

// SimulationColumns lays out simulations.
func SimulationColumns() []output.Column {
	return []output.Column{
		output.Field("ID", "id"),
		output.Field("Name", "name"),
		output.Field("Agent ID", "agent_id"),
		output.Field("Status", "status"),
		output.Field("Calls", "number_of_call_to_make"),
	}
}

// FileColumns lays out knowledge base files.
func FileColumns() []output.Column {
	return []output.Column{
		output.Field("ID", "id"),
		{Header: "Name", Value: func(row map[string]any) string {
			return output.Truncate(output.Text(row["name"]), 25)
		}},
		{Header: "Size", Value: func(row map[string]any) string {
			size, _ := row["file_size"].(float64)
			return output.FileSize(int64(size))
		}},
		{Header: "Type", Value: func(row map[string]any) string {
			return fileType(output.Text(row["mime_type"]))
		}},
		{Header: "Status", Value: func(row map[string]any) string {
			status := output.Text(row["upload_status"])
			if status == "uploaded" {
				return "OK"
			}
			return status
		}},
		output.Field("Uploaded", "upload_date"),
		{Header: "Download", Value: func(row map[string]any) string {
			return output.Truncate(output.Text(row["download_url"]), 40)
		}},
	}
}

// PhoneNumberColumns lays out imported phone numbers.
func PhoneNumberColumns() []output.Column {
	return []output.Column{
		output.Field("ID", "id"),
		output.Field("Number", "phone_number", "number"),
		output.Field("Name", "name", "label"),
		output.Field("Agent", "agent_name", "agent_id", "bot_id"),
	}
}

// IntegrationColumns lays out integrations.
func IntegrationColumns() []output.Column {
	return []output.Column{
		output.Field("ID", "id"),
		output.Field("Name", "name"),
		output.Field("Type", "integration_type", "type"),
		{Header: "URL", Value: func(row map[string]any) string {
			return output.Truncate(output.Text(row["url"]), 40)
		}},
	}
}

func fileType(mime string) string {
	switch {
	case mime == "":
		return "?"
	case strings.Contains(mime, "pdf"):
		return "PDF"
	case strings.Contains(mime, "image"):
		return "IMG"
	case strings.Contains(mime, "text"):
		return "TXT"
	}
	t := mime[strings.LastIndex(mime, "/")+1:]
	if len(t) > 4 {
		t = t[:4]
	}
	return strings.ToUpper(t)
}

// datePart keeps the date of an ISO timestamp.
func datePart(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
