package resource

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	domres "github.com/learnora/learnora/internal/domain/resource"
)

// resourceToHash converts a Resource into HSET fields.
// Empty title and source are omitted so that absence survives the round trip.
func resourceToHash(r domres.Resource) map[string]string {
	labels := r.Labels()
	path, _ := json.Marshal(labels) // a []string always encodes

	m := map[string]string{
		FieldLink:        r.Link(),
		FieldLabels:      strings.Join(labels, labelSeparator),
		FieldLabelPath:   string(path),
		FieldCredibility: strconv.FormatFloat(r.Credibility(), 'f', -1, 64),
	}
	if r.Title() != "" {
		m[FieldTitle] = r.Title()
	}
	if r.Source() != "" {
		m[FieldSource] = r.Source()
	}
	return m
}

// FromHash hydrates a Resource from stored fields. Unparseable credibility reads as zero.
func FromHash(id string, m map[string]string) domres.Resource {
	credibility := 0.0
	if raw := m[FieldCredibility]; raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			credibility = parsed
		}
	}
	return domres.New(id, m[FieldTitle], m[FieldLink], m[FieldSource], labelsFromHash(m), credibility)
}

// labelsFromHash prefers the JSON label path and falls back to splitting the TAG value
// for records written before the path field existed.
func labelsFromHash(m map[string]string) []string {
	if raw := m[FieldLabelPath]; raw != "" {
		var labels []string
		if err := json.Unmarshal([]byte(raw), &labels); err == nil {
			return labels
		}
	}
	if raw := m[FieldLabels]; raw != "" {
		return strings.Split(raw, labelSeparator)
	}
	return nil
}
