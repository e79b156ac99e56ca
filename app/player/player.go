// Package player 选手资源
package player

import (
	"strings"

	"tourneycompanion/data/repository"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/domain/entity"
	"tourneycompanion/validation"
)

const Resource = "player"

// Entity 持久化实体
type Entity struct {
	entity.Entity
	Handle string `json:"handle" db:"handle"`
	Email  string `json:"email" db:"email"`
	Rating int    `json:"rating" db:"rating"`
}

// DTO 对外数据
type DTO struct {
	domain.DTO
	Handle string `json:"handle" validate:"required,min=3,max=32,handle"`
	Email  string `json:"email" validate:"required,email"`
	Rating int    `json:"rating" validate:"gte=0,lte=4000"`
}

var Table = repository.Table{
	Name:    "players",
	Columns: []string{"handle", "email", "rating"},
}

// Schema handle 唯一
const Schema = `
CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	handle TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	rating INTEGER NOT NULL DEFAULT 0,
	created_timestamp TIMESTAMP NOT NULL,
	last_modified_timestamp TIMESTAMP NOT NULL
);
`

var Mapper = crud.MapperFuncs[*Entity, *DTO]{
	To: func(dto *DTO) *Entity {
		e := &Entity{Handle: dto.Handle, Email: strings.ToLower(dto.Email), Rating: dto.Rating}
		e.ID = domain.CloneID(dto.ID)
		return e
	},
	From: func(e *Entity) *DTO {
		dto := &DTO{Handle: e.Handle, Email: e.Email, Rating: e.Rating}
		dto.ID = domain.CloneID(e.ID)
		return dto
	},
}

// NewValidator 仅使用 struct tag 规则
func NewValidator() *validation.StructValidator[*DTO] {
	return validation.NewStructValidator[*DTO]()
}

func NewService(repo crud.IRepository[*Entity], opts ...crud.Option) *crud.CRUDService[*Entity, *DTO] {
	return crud.NewCRUDService[*Entity, *DTO](repo, Mapper, NewValidator(), opts...)
}
