package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobin(t *testing.T) {
	p, err := RoundRobinProxySwitcher("http://127.0.0.1:8888", "http://127.0.0.1:8889")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://www.quebec.ca", nil)
	var hosts []string
	for i := 0; i < 3; i++ {
		u, err := p(req)
		require.NoError(t, err)
		hosts = append(hosts, u.Host)
	}
	assert.Equal(t, []string{"127.0.0.1:8888", "127.0.0.1:8889", "127.0.0.1:8888"}, hosts)
}

func TestFromList(t *testing.T) {
	p, err := FromList(nil)
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = FromList([]string{"://bad"})
	assert.Error(t, err)
}
