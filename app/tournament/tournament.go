// Package tournament 赛事资源：实体、DTO、映射、校验与表结构
package tournament

import (
	"time"

	"github.com/shopspring/decimal"

	"tourneycompanion/data/repository"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/domain/entity"
)

// Resource 资源名，用于事件、指标与缓存键
const Resource = "tournament"

// 赛制
const (
	FormatSingleElimination = "single_elimination"
	FormatDoubleElimination = "double_elimination"
	FormatRoundRobin        = "round_robin"
	FormatSwiss             = "swiss"
)

// Entity 持久化实体
type Entity struct {
	entity.Entity
	Name            string          `json:"name" db:"name"`
	Game            string          `json:"game" db:"game"`
	Format          string          `json:"format" db:"format"`
	StartsAt        time.Time       `json:"starts_at" db:"starts_at"`
	EntryFee        decimal.Decimal `json:"entry_fee" db:"entry_fee"`
	MaxParticipants int             `json:"max_participants" db:"max_participants"`
}

// DTO 对外数据
type DTO struct {
	domain.DTO
	Name            string          `json:"name" validate:"required,max=64"`
	Game            string          `json:"game" validate:"required,max=64"`
	Format          string          `json:"format" validate:"required,oneof=single_elimination double_elimination round_robin swiss"`
	StartsAt        time.Time       `json:"starts_at"`
	EntryFee        decimal.Decimal `json:"entry_fee"`
	MaxParticipants int             `json:"max_participants" validate:"gte=2,lte=1024"`
}

// Table 表描述
var Table = repository.Table{
	Name:    "tournaments",
	Columns: []string{"name", "game", "format", "starts_at", "entry_fee", "max_participants"},
}

// Schema sqlite DDL，entry_fee 以文本保存以保留精度
const Schema = `
CREATE TABLE IF NOT EXISTS tournaments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	game TEXT NOT NULL,
	format TEXT NOT NULL,
	starts_at TIMESTAMP NOT NULL,
	entry_fee TEXT NOT NULL DEFAULT '0',
	max_participants INTEGER NOT NULL,
	created_timestamp TIMESTAMP NOT NULL,
	last_modified_timestamp TIMESTAMP NOT NULL
);
`

// Mapper 实体与 DTO 之间的映射
var Mapper = crud.MapperFuncs[*Entity, *DTO]{
	To: func(dto *DTO) *Entity {
		e := &Entity{
			Name:            dto.Name,
			Game:            dto.Game,
			Format:          dto.Format,
			StartsAt:        dto.StartsAt.UTC(),
			EntryFee:        dto.EntryFee,
			MaxParticipants: dto.MaxParticipants,
		}
		e.ID = domain.CloneID(dto.ID)
		return e
	},
	From: func(e *Entity) *DTO {
		dto := &DTO{
			Name:            e.Name,
			Game:            e.Game,
			Format:          e.Format,
			StartsAt:        e.StartsAt.UTC(),
			EntryFee:        e.EntryFee,
			MaxParticipants: e.MaxParticipants,
		}
		dto.ID = domain.CloneID(e.ID)
		return dto
	},
}

// NewService 创建赛事服务
func NewService(repo crud.IRepository[*Entity], opts ...crud.Option) *crud.CRUDService[*Entity, *DTO] {
	return crud.NewCRUDService[*Entity, *DTO](repo, Mapper, NewValidator(time.Now), opts...)
}
