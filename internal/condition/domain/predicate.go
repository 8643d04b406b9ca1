package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Context carries the purchase facts a condition is evaluated against.
type Context struct {
	AmountCents  int64
	Quantity     int64
	At           time.Time
	CustomerType string
}

// Predicate is the decoded, typed form of a condition's comparison. Each
// condition type carries only its legal operator subset and value shape;
// illegal combinations are rejected when the predicate is built, not when
// it is evaluated.
type Predicate interface {
	Matches(Context) bool
}

type AmountPredicate struct {
	Operator Operator
	Cents    int64
	MinCents int64
	MaxCents int64
}

func (p AmountPredicate) Matches(ctx Context) bool {
	return compareInt64(p.Operator, ctx.AmountCents, p.Cents, p.MinCents, p.MaxCents)
}

type QuantityPredicate struct {
	Operator Operator
	Count    int64
	Min      int64
	Max      int64
}

func (p QuantityPredicate) Matches(ctx Context) bool {
	return compareInt64(p.Operator, ctx.Quantity, p.Count, p.Min, p.Max)
}

type DateRangePredicate struct {
	Operator Operator
	At       time.Time
	From     time.Time
	To       time.Time
}

func (p DateRangePredicate) Matches(ctx Context) bool {
	switch p.Operator {
	case OpEquals:
		return ctx.At.Equal(p.At)
	case OpAfter:
		return ctx.At.After(p.At)
	case OpBefore:
		return ctx.At.Before(p.At)
	case OpBetween:
		return !ctx.At.Before(p.From) && !ctx.At.After(p.To)
	default:
		return false
	}
}

type CustomerTypePredicate struct {
	Token string
}

func (p CustomerTypePredicate) Matches(ctx Context) bool {
	return ctx.CustomerType == p.Token
}

func compareInt64(op Operator, have, want, min, max int64) bool {
	switch op {
	case OpEquals:
		return have == want
	case OpGreaterThan:
		return have > want
	case OpGreaterOrEqual:
		return have >= want
	case OpLessThan:
		return have < want
	case OpLessOrEqual:
		return have <= want
	case OpBetween:
		return have >= min && have <= max
	default:
		return false
	}
}

type conditionValuePayload struct {
	Amount       *int64     `json:"amount,omitempty"`
	MinAmount    *int64     `json:"min_amount,omitempty"`
	MaxAmount    *int64     `json:"max_amount,omitempty"`
	Quantity     *int64     `json:"quantity,omitempty"`
	MinQuantity  *int64     `json:"min_quantity,omitempty"`
	MaxQuantity  *int64     `json:"max_quantity,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	CustomerType *string    `json:"customer_type,omitempty"`
}

// DecodePredicate decodes a condition's raw payload into its typed predicate.
// Unknown fields, missing bounds and operator/type mismatches all surface as
// ErrInvalidConditionConfiguration.
func DecodePredicate(conditionType ConditionType, op Operator, raw datatypes.JSON) (Predicate, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty condition_value", ErrInvalidConditionConfiguration)
	}

	var payload conditionValuePayload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConditionConfiguration, err)
	}

	switch conditionType {
	case TypeAmount:
		return decodeAmount(op, payload)
	case TypeQuantity:
		return decodeQuantity(op, payload)
	case TypeDateRange:
		return decodeDateRange(op, payload)
	case TypeCustomerType:
		return decodeCustomerType(op, payload)
	default:
		return nil, fmt.Errorf("%w: unknown condition_type %q", ErrInvalidConditionConfiguration, conditionType)
	}
}

func decodeAmount(op Operator, payload conditionValuePayload) (Predicate, error) {
	switch op {
	case OpEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		value := payload.Amount
		if value == nil {
			value = payload.MinAmount
		}
		if value == nil {
			return nil, fmt.Errorf("%w: amount condition requires amount", ErrInvalidConditionConfiguration)
		}
		return AmountPredicate{Operator: op, Cents: *value}, nil
	case OpBetween:
		if payload.MinAmount == nil || payload.MaxAmount == nil {
			return nil, fmt.Errorf("%w: between requires min_amount and max_amount", ErrInvalidConditionConfiguration)
		}
		if *payload.MaxAmount < *payload.MinAmount {
			return nil, fmt.Errorf("%w: max_amount below min_amount", ErrInvalidConditionConfiguration)
		}
		return AmountPredicate{Operator: op, MinCents: *payload.MinAmount, MaxCents: *payload.MaxAmount}, nil
	default:
		return nil, fmt.Errorf("%w: operator %q not valid for amount", ErrInvalidConditionConfiguration, op)
	}
}

func decodeQuantity(op Operator, payload conditionValuePayload) (Predicate, error) {
	switch op {
	case OpEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		value := payload.Quantity
		if value == nil {
			value = payload.MinQuantity
		}
		if value == nil {
			return nil, fmt.Errorf("%w: quantity condition requires quantity", ErrInvalidConditionConfiguration)
		}
		return QuantityPredicate{Operator: op, Count: *value}, nil
	case OpBetween:
		if payload.MinQuantity == nil || payload.MaxQuantity == nil {
			return nil, fmt.Errorf("%w: between requires min_quantity and max_quantity", ErrInvalidConditionConfiguration)
		}
		if *payload.MaxQuantity < *payload.MinQuantity {
			return nil, fmt.Errorf("%w: max_quantity below min_quantity", ErrInvalidConditionConfiguration)
		}
		return QuantityPredicate{Operator: op, Min: *payload.MinQuantity, Max: *payload.MaxQuantity}, nil
	default:
		return nil, fmt.Errorf("%w: operator %q not valid for quantity", ErrInvalidConditionConfiguration, op)
	}
}

func decodeDateRange(op Operator, payload conditionValuePayload) (Predicate, error) {
	switch op {
	case OpEquals, OpAfter, OpBefore:
		if payload.Date == nil {
			return nil, fmt.Errorf("%w: date_range condition requires date", ErrInvalidConditionConfiguration)
		}
		return DateRangePredicate{Operator: op, At: payload.Date.UTC()}, nil
	case OpBetween:
		if payload.From == nil || payload.To == nil {
			return nil, fmt.Errorf("%w: between requires from and to", ErrInvalidConditionConfiguration)
		}
		if payload.To.Before(*payload.From) {
			return nil, fmt.Errorf("%w: to before from", ErrInvalidConditionConfiguration)
		}
		return DateRangePredicate{Operator: op, From: payload.From.UTC(), To: payload.To.UTC()}, nil
	default:
		return nil, fmt.Errorf("%w: operator %q not valid for date_range", ErrInvalidConditionConfiguration, op)
	}
}

func decodeCustomerType(op Operator, payload conditionValuePayload) (Predicate, error) {
	if op != OpEquals {
		return nil, fmt.Errorf("%w: customer_type only supports equals", ErrInvalidConditionConfiguration)
	}
	if payload.CustomerType == nil || *payload.CustomerType == "" {
		return nil, fmt.Errorf("%w: customer_type condition requires customer_type", ErrInvalidConditionConfiguration)
	}
	return CustomerTypePredicate{Token: *payload.CustomerType}, nil
}

// Evaluate reports whether the condition applies at the given instant under
// the given context. Inactive or out-of-window conditions never apply. A
// payload that no longer decodes is a configuration error, not a miss.
func (c *PriceListCondition) Evaluate(now time.Time, evalCtx Context) (bool, error) {
	if !c.IsValidNow(now) {
		return false, nil
	}
	pred, err := DecodePredicate(c.ConditionType, c.Operator, c.ConditionValue)
	if err != nil {
		return false, err
	}
	return pred.Matches(evalCtx), nil
}
