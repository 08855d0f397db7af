package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       string
	}{
		{name: "precedence", expression: "15 * 23 + 45", want: "390"},
		{name: "parentheses", expression: "(2 + 3) * 4", want: "20"},
		{name: "decimal result", expression: "7 / 2", want: "3.5"},
		{name: "unary minus", expression: "-5 + 3", want: "-2"},
		{name: "nested parens", expression: "((1 + 2) * (3 + 4))", want: "21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.expression))
		})
	}
}

func TestCalculateRejectsInvalidCharacters(t *testing.T) {
	for _, expr := range []string{"2 + x", "import os", "__import__(1)", "1 & 2"} {
		assert.Equal(t, "Error: Invalid characters in mathematical expression", Calculate(expr), expr)
	}
}

func TestCalculateDivisionByZero(t *testing.T) {
	assert.Equal(t, "Error: division by zero", Calculate("1/0"))
}

func TestCalculateMalformedInput(t *testing.T) {
	for _, expr := range []string{"", "1 +", "(1 + 2", "1..2..3 +", "*3"} {
		got := Calculate(expr)
		assert.Contains(t, got, "Error:", expr)
	}
}
