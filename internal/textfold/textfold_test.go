package textfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Totale", "totale"},
		{"CITTÀ", "citta"},
		{"Perché Sì", "perche si"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("TOTALE EVENTO", "total"))
	assert.True(t, Contains("N° Ospìti", "ospiti"))
	assert.False(t, Contains("Acconto", "total"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Numero persone", "guests", "persone"))
	assert.False(t, ContainsAny("Data", "guests", "persone"))
	assert.False(t, ContainsAny("anything"))
}
