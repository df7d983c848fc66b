package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession("s1", "start")
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "start", s.CurrentNodeID)
	assert.Equal(t, StatusAwaitingInput, s.Status)
	assert.NotNil(t, s.Variables)
	assert.Empty(t, s.History)
}

func TestSession_RecordCapsHistory(t *testing.T) {
	s := NewSession("s1", "start")
	for i := 0; i < maxHistory+10; i++ {
		s.Record(RoleContact, fmt.Sprintf("msg-%d", i))
	}
	require.Len(t, s.History, maxHistory)
	// Oldest entries were dropped.
	assert.Equal(t, "msg-10", s.History[0].Content)
	assert.Equal(t, fmt.Sprintf("msg-%d", maxHistory+9), s.History[len(s.History)-1].Content)
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("s1", "start")
	s.Variables["name"] = "Ada"
	s.Record(RoleBot, "hello")

	c := s.Clone()
	c.Variables["name"] = "Grace"
	c.Record(RoleContact, "hi")
	c.CurrentNodeID = "elsewhere"

	assert.Equal(t, "Ada", s.Variables["name"])
	assert.Len(t, s.History, 1)
	assert.Equal(t, "start", s.CurrentNodeID)
}

func TestSession_CloneNil(t *testing.T) {
	var s *Session
	assert.Nil(t, s.Clone())
}
