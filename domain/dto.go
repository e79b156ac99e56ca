package domain

// DTO 面向边界的数据传输对象基类（用于嵌入）。
// 只承载身份字段，具体领域在此基础上追加业务字段。
type DTO struct {
	ID *int64 `json:"id,omitempty"`
}

func (d *DTO) GetID() *int64 { return d.ID }

func (d *DTO) SetID(id *int64) { d.ID = id }
