package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestString(t *testing.T) {
	assert.Equal(t, "4x Lightning Bolt", Request{Name: "Lightning Bolt", Quantity: 4}.String())
	assert.Equal(t, "1x Sol Ring (cmr) 472", Request{Name: "Sol Ring", Quantity: 1, SetCode: "cmr", CollectorNumber: "472"}.String())
}

func TestHasPrinting(t *testing.T) {
	assert.True(t, Request{SetCode: "2x2", CollectorNumber: "117"}.HasPrinting())
	assert.False(t, Request{SetCode: "2x2"}.HasPrinting())
	assert.False(t, Request{CollectorNumber: "117"}.HasPrinting())
}
