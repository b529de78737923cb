package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_Disabled(t *testing.T) {
	tr, closer, err := InitTracer(Config{})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tr)
	assert.NotPanics(t, closer)
}

func TestStartSpanAndFinish(t *testing.T) {
	mt := mocktracer.New()
	prev := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(mt)
	defer opentracing.SetGlobalTracer(prev)

	parent, ctx := StartSpan(context.Background(), "cycle")
	child, _ := StartSpan(ctx, "symbol", opentracing.Tag{Key: "symbol", Value: "BTC-USDT"})
	Finish(child, errors.New("boom"))
	Finish(parent, nil)

	spans := mt.FinishedSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "symbol", spans[0].OperationName)
	assert.Equal(t, "BTC-USDT", spans[0].Tag("symbol"))
	assert.Equal(t, true, spans[0].Tag("error"))
	assert.Equal(t, spans[1].SpanContext.SpanID, spans[0].ParentID)
	assert.Nil(t, spans[1].Tag("error"))
}
