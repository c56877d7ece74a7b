package models

import (
	"fmt"
	"time"
)

// FieldValue is one proposed assignment to a tracked case field.
type FieldValue struct {
	Name  string
	Value any
}

// Tracked case field names.
const (
	FieldCode        = "code"
	FieldService     = "service"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldResponsible = "responsible"
	FieldSummary     = "summary"
	FieldOpenedAt    = "opened_at"
	FieldClosedAt    = "closed_at"
)

type caseField struct {
	// get returns the canonical, comparable form of the current value.
	get func(c *Case) any
	set func(c *Case, v any) error
}

var caseFields = map[string]caseField{
	FieldCode: {
		get: func(c *Case) any { return c.Code },
		set: func(c *Case, v any) error {
			s, ok := v.(string)
			if !ok {
				return typeError(FieldCode, v)
			}
			c.Code = s
			return nil
		},
	},
	FieldService: {
		get: func(c *Case) any { return c.Service },
		set: func(c *Case, v any) error {
			s, ok := v.(string)
			if !ok {
				return typeError(FieldService, v)
			}
			c.Service = s
			return nil
		},
	},
	FieldStatus: {
		get: func(c *Case) any { return string(c.Status) },
		set: func(c *Case, v any) error {
			switch st := v.(type) {
			case CaseStatus:
				c.Status = st
			case string:
				parsed, ok := ParseCaseStatus(st)
				if !ok {
					return fmt.Errorf("%w: unknown status %q", ErrValidation, st)
				}
				c.Status = parsed
			default:
				return typeError(FieldStatus, v)
			}
			return nil
		},
	},
	FieldPriority: {
		get: func(c *Case) any { return string(c.Priority) },
		set: func(c *Case, v any) error {
			switch p := v.(type) {
			case Priority:
				c.Priority = p
			case string:
				parsed, ok := ParsePriority(p)
				if !ok {
					return fmt.Errorf("%w: unknown priority %q", ErrValidation, p)
				}
				c.Priority = parsed
			default:
				return typeError(FieldPriority, v)
			}
			return nil
		},
	},
	FieldResponsible: {
		get: func(c *Case) any { return canonicalString(c.Responsible) },
		set: func(c *Case, v any) error {
			switch s := v.(type) {
			case nil:
				c.Responsible = nil
			case string:
				c.Responsible = &s
			case *string:
				c.Responsible = s
			default:
				return typeError(FieldResponsible, v)
			}
			return nil
		},
	},
	FieldSummary: {
		get: func(c *Case) any { return c.Summary },
		set: func(c *Case, v any) error {
			s, ok := v.(string)
			if !ok {
				return typeError(FieldSummary, v)
			}
			c.Summary = s
			return nil
		},
	},
	FieldOpenedAt: {
		get: func(c *Case) any { return canonicalTime(&c.OpenedAt) },
		set: func(c *Case, v any) error {
			t, ok := v.(time.Time)
			if !ok {
				return typeError(FieldOpenedAt, v)
			}
			c.OpenedAt = t
			return nil
		},
	},
	FieldClosedAt: {
		get: func(c *Case) any { return canonicalTime(c.ClosedAt) },
		set: func(c *Case, v any) error {
			switch t := v.(type) {
			case nil:
				c.ClosedAt = nil
			case time.Time:
				c.ClosedAt = &t
			case *time.Time:
				c.ClosedAt = t
			default:
				return typeError(FieldClosedAt, v)
			}
			return nil
		},
	},
}

// DiffCase compares each proposed value with the current one and returns
// the fields whose canonical values differ. c is not modified.
func DiffCase(c *Case, proposed []FieldValue) (map[string]FieldChange, error) {
	changes := make(map[string]FieldChange)
	for _, fv := range proposed {
		f, ok := caseFields[fv.Name]
		if !ok {
			return nil, fmt.Errorf("%w: untracked field %q", ErrValidation, fv.Name)
		}
		scratch := *c
		if err := f.set(&scratch, fv.Value); err != nil {
			return nil, err
		}
		oldV, newV := f.get(c), f.get(&scratch)
		if oldV != newV {
			changes[fv.Name] = FieldChange{Old: oldV, New: newV}
		}
	}
	return changes, nil
}

// SetCaseField assigns a single tracked field.
func SetCaseField(c *Case, name string, v any) error {
	f, ok := caseFields[name]
	if !ok {
		return fmt.Errorf("%w: untracked field %q", ErrValidation, name)
	}
	return f.set(c, v)
}

func canonicalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func canonicalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func typeError(field string, v any) error {
	return fmt.Errorf("%w: field %s does not accept %T", ErrValidation, field, v)
}

// CaseUpdate is a partial update; nil pointers are left untouched.
// Notes, when set, becomes a new observation rather than a field change.
type CaseUpdate struct {
	Code        *string     `json:"code,omitempty"`
	Service     *string     `json:"service,omitempty"`
	Status      *CaseStatus `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Responsible *string     `json:"responsible,omitempty"`
	Summary     *string     `json:"summary,omitempty"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
}

// Fields lists the proposed assignments in a fixed order.
func (u CaseUpdate) Fields() []FieldValue {
	var fields []FieldValue
	if u.Code != nil {
		fields = append(fields, FieldValue{FieldCode, *u.Code})
	}
	if u.Service != nil {
		fields = append(fields, FieldValue{FieldService, *u.Service})
	}
	if u.Status != nil {
		fields = append(fields, FieldValue{FieldStatus, *u.Status})
	}
	if u.Priority != nil {
		fields = append(fields, FieldValue{FieldPriority, *u.Priority})
	}
	if u.Responsible != nil {
		fields = append(fields, FieldValue{FieldResponsible, *u.Responsible})
	}
	if u.Summary != nil {
		fields = append(fields, FieldValue{FieldSummary, *u.Summary})
	}
	if u.ClosedAt != nil {
		fields = append(fields, FieldValue{FieldClosedAt, *u.ClosedAt})
	}
	return fields
}
