package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumentCtx struct {
	output    InstrumentOutput
	idcounter *uint64
}

type messageIdKey struct{}

// `output` can be nil, if it is, then the function is a no-op
func InstrumentClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	i := instrumentCtx{output: output, idcounter: &idcounter}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
}

func (i instrumentCtx) onBeforeRequest(cli *resty.Client, req *resty.Request) error {
	messageId := strconv.FormatUint(atomic.AddUint64(i.idcounter, 1), 10)
	slog.DebugContext(
		req.Context(), "start request",
		"method", req.Method,
		"url", req.URL,
		"message_id", messageId,
	)
	req.SetContext(context.WithValue(req.Context(), messageIdKey{}, messageId))
	return nil
}

func (i instrumentCtx) onAfterResponse(cli *resty.Client, res *resty.Response) error {
	messageId, ok := res.Request.Context().Value(messageIdKey{}).(string)
	if !ok {
		return nil
	}

	contents := fmt.Sprintf(
		"%s %s\nstatus: %d\n\n%s",
		res.Request.Method,
		res.Request.URL,
		res.StatusCode(),
		res.String(),
	)
	i.output.Write(messageId, contents)

	slog.DebugContext(
		res.Request.Context(), "finished request",
		"status", res.StatusCode(),
		"message_id", messageId,
	)
	return nil
}
