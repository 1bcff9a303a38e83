package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"orkio/internal/logging"
	"orkio/internal/types"
)

// streamPayload is the wire shape of one `data:` record. Delta is a
// pointer so an absent field is distinguishable from an empty fragment.
type streamPayload struct {
	Delta      *string           `json:"delta"`
	Done       bool              `json:"done"`
	RAGSources []types.RAGSource `json:"rag_sources"`
}

// eventDecoder turns the raw byte stream of an open answer into an
// ordered event sequence. It buffers partial lines across reads, so
// output is identical no matter how the transport chunks the bytes.
// The sequence ends with exactly one terminal event; a stream that
// closes without a done marker gets one synthesized.
type eventDecoder struct {
	r        io.Reader
	buf      string
	queue    []types.StreamEvent
	terminal bool
	finished bool
	readErr  error
	log      logging.Logger
}

func newEventDecoder(r io.Reader, log logging.Logger) *eventDecoder {
	if log == nil {
		log = logging.Nop()
	}
	return &eventDecoder{r: r, log: log}
}

// Next returns the next event. After the terminal event it returns
// ok=false forever.
func (d *eventDecoder) Next() (types.StreamEvent, bool) {
	for {
		if len(d.queue) > 0 {
			event := d.queue[0]
			d.queue = d.queue[1:]
			if event.Terminal() {
				d.finished = true
				d.queue = nil
			}
			return event, true
		}
		if d.finished {
			return types.StreamEvent{}, false
		}
		if d.readErr != nil {
			d.enqueueTerminalFor(d.readErr)
			continue
		}

		chunk := make([]byte, 4096)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf += string(chunk[:n])
			d.drain()
		}
		if err != nil {
			d.readErr = err
			if len(d.queue) == 0 {
				d.enqueueTerminalFor(err)
			}
		}
	}
}

// enqueueTerminalFor converts the end of the byte stream into the
// terminal event: a clean close becomes a synthesized Done, anything
// else an Error.
func (d *eventDecoder) enqueueTerminalFor(err error) {
	if d.terminal {
		d.finished = true
		return
	}
	d.terminal = true
	if errors.Is(err, io.EOF) {
		d.queue = append(d.queue, types.StreamEvent{Kind: types.StreamDone})
		return
	}
	d.queue = append(d.queue, types.StreamEvent{Kind: types.StreamError, Err: err})
}

// drain parses every complete line in the buffer, keeping an incomplete
// trailing fragment for the next chunk. A done record wins over any
// records still queued behind it; nothing past it is parsed.
func (d *eventDecoder) drain() {
	for !d.terminal {
		idx := strings.IndexByte(d.buf, '\n')
		if idx < 0 {
			return
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]
		d.parseLine(line)
	}
}

func (d *eventDecoder) parseLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if !strings.HasPrefix(line, "data:") {
		d.log.Warn("dropping stream record without data prefix")
		return
	}
	raw := strings.TrimSpace(line[len("data:"):])
	if raw == "" {
		return
	}
	var payload streamPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		d.log.Warn("dropping malformed stream record", logging.F("err", err))
		return
	}
	if payload.Done {
		d.terminal = true
		d.queue = append(d.queue, types.StreamEvent{Kind: types.StreamDone, Sources: payload.RAGSources})
		return
	}
	if payload.Delta == nil {
		d.log.Warn("dropping stream record without delta or done")
		return
	}
	d.queue = append(d.queue, types.StreamEvent{Kind: types.StreamDelta, Delta: *payload.Delta})
}

// StreamChat opens a streamed answer for one conversation turn. The
// returned channel delivers events in decode order and is closed after
// the terminal event; the cancel function aborts the transport.
func (c *Client) StreamChat(ctx context.Context, streamReq StreamRequest) (<-chan types.StreamEvent, func(), error) {
	if strings.TrimSpace(streamReq.Message) == "" {
		return nil, nil, errors.New("message is required")
	}
	cred, err := c.credential(types.DomainEndUser)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	body, err := json.Marshal(streamReq)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/u/chat/stream", strings.NewReader(string(body)))
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	httpClient := &http.Client{}
	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		cancel()
		return nil, nil, c.authFailed(cred.Domain)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		return nil, nil, decodeAPIError(resp)
	}

	ch := make(chan types.StreamEvent, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		decoder := newEventDecoder(resp.Body, c.log.With(logging.F("conversation", streamReq.ConversationID)))
		for {
			event, ok := decoder.Next()
			if !ok {
				return
			}
			select {
			case ch <- event:
			case <-ctx.Done():
				return
			}
			if event.Terminal() {
				return
			}
		}
	}()

	return ch, cancel, nil
}
