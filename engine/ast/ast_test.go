package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNative(t *testing.T) {
	assert.Equal(t, "hi", Native(StringValue("hi")))
	assert.Equal(t, int64(42), Native(IntValue(42)))
	assert.Equal(t, int64(1<<40), Native(LongValue(1<<40)))
	assert.Equal(t, 2.5, Native(DoubleValue(2.5)))
	assert.Equal(t, true, Native(BooleanValue(true)))
	assert.Nil(t, Native(NullValue{}))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "hi", Format(StringValue("hi")))
	assert.Equal(t, "42", Format(IntValue(42)))
	assert.Equal(t, "-7", Format(LongValue(-7)))
	assert.Equal(t, "2.5", Format(DoubleValue(2.5)))
	assert.Equal(t, "true", Format(BooleanValue(true)))
	assert.Equal(t, "null", Format(NullValue{}))
}

func TestConstructors(t *testing.T) {
	col := Col("name")
	assert.Equal(t, &ColumnRef{Column: "name"}, col)

	qcol := QCol("users", "id")
	assert.Equal(t, &ColumnRef{Table: "users", Column: "id"}, qcol)

	cond := Eq("age", IntValue(30))
	assert.Equal(t, Equals, cond.Operator)
	assert.Equal(t, Col("age"), cond.Left)
	assert.Equal(t, Lit(IntValue(30)), cond.Right)
}

func TestIntPtr(t *testing.T) {
	p := IntPtr(10)
	assert.Equal(t, 10, *p)
}
