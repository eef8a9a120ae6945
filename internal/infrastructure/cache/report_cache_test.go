package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCache_Keys(t *testing.T) {
	c := NewReportCache(nil)

	assert.Equal(t, "shoppos:reports:gen", c.genKey())
	assert.Equal(t, "shoppos:reports:0:dashboard", c.dataKey(0, "dashboard"))
	assert.Equal(t, "shoppos:reports:7:sales:day::", c.dataKey(7, "sales:day::"))
}
