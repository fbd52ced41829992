package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/coop-inventory/pkg/ptr"
)

func TestNewAndDeref(t *testing.T) {
	p := ptr.New("sale.recorded")
	assert.Equal(t, "sale.recorded", *p)
	assert.Equal(t, "sale.recorded", ptr.Deref(p, "fallback"))

	var missing *int
	assert.Equal(t, 7, ptr.Deref(missing, 7))
}
