package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testRecord struct {
	DTO
}

func TestSameIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b IIdentified
		want bool
	}{
		{name: "相同ID", a: &testRecord{DTO{ID: ID(1)}}, b: &testRecord{DTO{ID: ID(1)}}, want: true},
		{name: "不同ID", a: &testRecord{DTO{ID: ID(1)}}, b: &testRecord{DTO{ID: ID(2)}}, want: false},
		{name: "一侧为nil ID", a: &testRecord{DTO{ID: ID(1)}}, b: &testRecord{}, want: false},
		{name: "双方均为nil ID", a: &testRecord{}, b: &testRecord{}, want: false},
		{name: "nil对象", a: nil, b: &testRecord{DTO{ID: ID(1)}}, want: false},
		{name: "类型化nil指针", a: (*DTO)(nil), b: &testRecord{DTO{ID: ID(1)}}, want: false},
		{name: "双方均为类型化nil指针", a: (*testRecord)(nil), b: (*testRecord)(nil), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameIdentity(tt.a, tt.b))
		})
	}
}

func TestSameIdentity_SameReference(t *testing.T) {
	r := &testRecord{}
	// 未持久化对象只与自身相等
	assert.True(t, SameIdentity(r, r))
	assert.False(t, SameIdentity(r, &testRecord{}))
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "null", FormatID(nil))
	assert.Equal(t, "42", FormatID(ID(42)))
	assert.Equal(t, "-7", FormatID(ID(-7)))
}

func TestCloneID(t *testing.T) {
	assert.Nil(t, CloneID(nil))

	src := ID(5)
	cp := CloneID(src)
	assert.Equal(t, int64(5), *cp)
	assert.NotSame(t, src, cp)
}
