package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/rubric"
	"github.com/okian/assessor/internal/domain/scoring"
	"github.com/tidwall/gjson"
)

// maxBodyBytes caps request bodies; a full submission is well under 8 KiB.
const maxBodyBytes = 64 << 10

var formFields = []string{
	model.FieldCandidateName,
	model.FieldAssessorName,
	model.FieldGroupID,
	model.FieldCaseStudy,
	model.FieldObservations,
}

// readObject reads the request body and checks that it is one JSON object.
func readObject(w http.ResponseWriter, r *http.Request) (gjson.Result, error) {
	const op = "api.readObject"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return gjson.Result{}, WrapKind(op, ErrBadRequest, err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, NewKind(op+": invalid json", ErrBadRequest)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return gjson.Result{}, NewKind(op+": body must be an object", ErrBadRequest)
	}
	return doc, nil
}

// parseStrings reads the named string members of doc. Absent and null
// members are skipped; any other non-string value is rejected.
func parseStrings(doc gjson.Result, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		v := doc.Get(name)
		switch v.Type {
		case gjson.Null:
			continue
		case gjson.String:
			out[name] = v.String()
		default:
			return nil, NewKind(fmt.Sprintf("api.parseStrings: %s must be a string", name), ErrBadRequest)
		}
	}
	return out, nil
}

// parseForm maps the form members of a submission body onto a FormInput.
func parseForm(doc gjson.Result) (model.FormInput, error) {
	fields, err := parseStrings(doc, formFields)
	if err != nil {
		return model.FormInput{}, err
	}
	return model.FormInput{
		Identity: model.Identity{
			CandidateName: fields[model.FieldCandidateName],
			AssessorName:  fields[model.FieldAssessorName],
			GroupID:       fields[model.FieldGroupID],
			CaseStudy:     fields[model.FieldCaseStudy],
		},
		Observations: fields[model.FieldObservations],
	}, nil
}

// parseMarks reads a marks object keyed by competency key. Each value is
// either exactly SubCount booleans or a list of checked indices. Missing
// competencies stay cleared.
func parseMarks(v gjson.Result) (scoring.Marks, error) {
	const op = "api.parseMarks"

	var m scoring.Marks
	if !v.Exists() || v.Type == gjson.Null {
		return m, nil
	}
	if !v.IsObject() {
		return m, NewKind(op+": marks must be an object", ErrBadRequest)
	}

	var perr error
	v.ForEach(func(key, list gjson.Result) bool {
		id, ok := rubric.Lookup(key.String())
		if !ok {
			perr = WrapKind(op, ErrBadRequest, fmt.Errorf("%w: %q", rubric.ErrUnknownCompetency, key.String()))
			return false
		}
		checks, err := parseChecks(list)
		if err != nil {
			perr = WrapKind(op+": "+key.String(), ErrBadRequest, err)
			return false
		}
		m[id].Checks = checks
		return true
	})
	return m, perr
}

func parseChecks(list gjson.Result) ([rubric.SubCount]bool, error) {
	var checks [rubric.SubCount]bool
	if !list.IsArray() {
		return checks, fmt.Errorf("expected an array")
	}
	items := list.Array()
	if len(items) > 0 && items[0].Type != gjson.Number {
		if len(items) != rubric.SubCount {
			return checks, fmt.Errorf("expected %d booleans, got %d", rubric.SubCount, len(items))
		}
		for i, it := range items {
			if it.Type != gjson.True && it.Type != gjson.False {
				return checks, fmt.Errorf("element %d is not a boolean", i)
			}
			checks[i] = it.Bool()
		}
		return checks, nil
	}
	for _, it := range items {
		if it.Type != gjson.Number || it.Num != float64(int(it.Num)) {
			return checks, fmt.Errorf("index %s is not an integer", it.Raw)
		}
		idx := int(it.Num)
		if idx < 0 || idx >= rubric.SubCount {
			return checks, fmt.Errorf("%w: index %d", scoring.ErrOutOfRange, idx)
		}
		checks[idx] = true
	}
	return checks, nil
}
