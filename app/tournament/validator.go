package tournament

import (
	"time"

	"tourneycompanion/domain/crud"
	"tourneycompanion/validation"
)

// NewValidator 创建赛事校验器，clock 用于判断开赛时间
func NewValidator(clock func() time.Time) *validation.StructValidator[*DTO] {
	if clock == nil {
		clock = time.Now
	}
	return validation.NewStructValidator[*DTO](
		validation.WithRule[*DTO](func(dto *DTO, op crud.Operation) []string {
			var v validation.Violations
			if dto.StartsAt.IsZero() {
				v.Add("starts_at is required.")
			} else if op == crud.OperationCreate {
				v.Check(!dto.StartsAt.Before(clock()), "starts_at must not be in the past.")
			}
			v.Check(!dto.EntryFee.IsNegative(), "entry_fee must not be negative.")
			return v.List()
		}),
	)
}
