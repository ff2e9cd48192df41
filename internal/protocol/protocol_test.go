package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWithoutPayload(t *testing.T) {
	b, err := Encode(MsgVotesClosed, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"votesClosed"}`, string(b))
}

func TestEncodeRejectsEmptyType(t *testing.T) {
	_, err := Encode("", RoundStart{})
	assert.Error(t, err)
}

func TestDecodeSubmit(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"submit","payload":{"value":42.5}}`))
	require.NoError(t, err)
	assert.Equal(t, MsgSubmit, env.Type)

	req, err := DecodePayload[SubmitRequest](env)
	require.NoError(t, err)
	require.NotNil(t, req.Value)
	assert.Equal(t, 42.5, *req.Value)
}

func TestDecodeSubmitNonNumeric(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"submit","payload":{"value":"ten"}}`))
	require.NoError(t, err)

	_, err = DecodePayload[SubmitRequest](env)
	assert.Error(t, err)
}

func TestDecodePayloadMissing(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"start"}`))
	require.NoError(t, err)

	_, err = DecodePayload[JoinRequest](env)
	assert.Error(t, err)
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"payload":{}}`} {
		_, err := DecodeEnvelope([]byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}
