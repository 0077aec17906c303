package llm

import (
	"testing"
	"time"
)

func TestBaseProviderTimeout(t *testing.T) {
	b := newBaseProvider("http://localhost", "", "m", 0)
	if b.client.Timeout != defaultTimeout {
		t.Errorf("zero timeout = %v, want the default %v", b.client.Timeout, defaultTimeout)
	}

	b = newBaseProvider("http://localhost", "", "m", 5*time.Second)
	if b.client.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", b.client.Timeout)
	}
}
