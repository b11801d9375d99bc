// Package ipc implements the rendezvous channel between the hangman server
// and its clients: one shared mailbox record plus three counting
// semaphores, all backed by files in a shared-memory directory.
//
// Client exchange:
//
//	turn.Wait → write request → request.Post → response.Wait → read → turn.Post
//
// Server loop:
//
//	request.Wait → read → handle → write response → response.Post
//
// The turn semaphore starts at one, so exactly one exchange is in flight
// at any time and the server sees a total order of requests.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	DefaultDir    = "/dev/shm"
	DefaultPrefix = "hangman"
)

var (
	// ErrNoServer is returned by Open when the server's objects do not exist.
	ErrNoServer = errors.New("no server accessible, start hangman-server first")
	// ErrShutdown is returned to a client that finds the terminate flag set
	// by the server.
	ErrShutdown = errors.New("server is shutting down")
	// ErrCorrupt is returned when an existing object has the wrong size.
	ErrCorrupt = errors.New("shared object has unexpected size")
)

// ResponseGrace is how long a client whose context was cancelled keeps
// waiting for the response to a request it already sent.
var ResponseGrace = 2 * time.Second

// Names locates the shared objects.
type Names struct {
	Dir    string // directory backing the objects, /dev/shm by default
	Prefix string // common name prefix, "hangman" by default
}

func (n Names) withDefaults() Names {
	if n.Dir == "" {
		n.Dir = DefaultDir
	}
	if n.Prefix == "" {
		n.Prefix = DefaultPrefix
	}
	return n
}

func (n Names) path(suffix string) string { return filepath.Join(n.Dir, n.Prefix+suffix) }

// Segment is the mailbox file.
func (n Names) Segment() string { return n.withDefaults().path("-shm") }

// Turn, Request and Response are the semaphore files.
func (n Names) Turn() string     { return n.withDefaults().path("-clt.sem") }
func (n Names) Request() string  { return n.withDefaults().path("-srv.sem") }
func (n Names) Response() string { return n.withDefaults().path("-ret.sem") }

func (n Names) all() []string {
	return []string{n.Segment(), n.Turn(), n.Request(), n.Response()}
}

// Channel is one process's view of the mailbox and its semaphores.
type Channel struct {
	names Names

	mem []byte
	rec *record

	turn     *Semaphore
	request  *Semaphore
	response *Semaphore

	created []string // objects this process created and must unlink

	closeOnce sync.Once
	closeErr  error
}

// Create makes every shared object and returns the server's channel.
// The semaphores are created exclusively and before the segment, so a
// client that finds the segment also finds initialized semaphores.
// On failure the objects created so far are removed again; objects that
// already existed are left alone.
func Create(names Names) (ch *Channel, err error) {
	names = names.withDefaults()
	ch = &Channel{names: names}
	defer func() {
		if err != nil {
			_ = ch.Close()
			ch = nil
		}
	}()

	sems := []struct {
		dst     **Semaphore
		path    string
		initial uint32
	}{
		{&ch.turn, names.Turn(), 1},
		{&ch.request, names.Request(), 0},
		{&ch.response, names.Response(), 0},
	}
	for _, s := range sems {
		if *s.dst, err = createSemaphore(s.path, s.initial); err != nil {
			return ch, err
		}
		ch.created = append(ch.created, s.path)
	}

	if ch.mem, err = mapFile(names.Segment(), recordSize, unix.O_CREAT); err != nil {
		return ch, err
	}
	ch.created = append(ch.created, names.Segment())
	ch.rec = (*record)(unsafe.Pointer(&ch.mem[0]))
	*ch.rec = record{ClientID: unregistered}
	return ch, nil
}

// Open attaches to the objects of a running server.
func Open(names Names) (ch *Channel, err error) {
	names = names.withDefaults()
	ch = &Channel{names: names}
	defer func() {
		if err != nil {
			_ = ch.Close()
			ch = nil
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("%w: %w", ErrNoServer, err)
			}
		}
	}()

	if ch.mem, err = mapFile(names.Segment(), recordSize, 0); err != nil {
		return ch, err
	}
	ch.rec = (*record)(unsafe.Pointer(&ch.mem[0]))
	if ch.turn, err = openSemaphore(names.Turn()); err != nil {
		return ch, err
	}
	if ch.request, err = openSemaphore(names.Request()); err != nil {
		return ch, err
	}
	if ch.response, err = openSemaphore(names.Response()); err != nil {
		return ch, err
	}
	return ch, nil
}

// Reclaim removes objects left behind by a server that did not exit cleanly.
func Reclaim(names Names) error {
	names = names.withDefaults()
	var errs []error
	for _, p := range names.all() {
		errs = append(errs, unlink(p))
	}
	return errors.Join(errs...)
}

// Names returns the object names the channel uses.
func (c *Channel) Names() Names { return c.names }

// Close unmaps everything; the server's channel also unlinks the objects it
// created.
// Only the first call does any work.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		if c.mem != nil {
			errs = append(errs, unix.Munmap(c.mem))
			c.mem, c.rec = nil, nil
		}
		for _, s := range []*Semaphore{c.turn, c.request, c.response} {
			if s != nil {
				errs = append(errs, s.close())
			}
		}
		for _, p := range c.created {
			errs = append(errs, unlink(p))
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

// ---------------------------------------------------------------- client

// Exchange performs one full client round trip: take the turn, send req,
// wait for the response and hand the turn back.
//
// If the server has raised the terminate flag, Exchange returns ErrShutdown
// without writing anything and without returning the turn.
func (c *Channel) Exchange(ctx context.Context, req Request) (Response, error) {
	if err := c.acquire(ctx); err != nil {
		return Response{}, err
	}
	c.rec.putRequest(req)
	if err := c.request.Post(); err != nil {
		return Response{}, err
	}

	resp, ok, err := c.awaitResponse(ctx)
	if !ok {
		return Response{}, err
	}
	if perr := c.turn.Post(); perr != nil {
		return resp, perr
	}
	return resp, err
}

// Goodbye tells the server that client id is leaving. The server answers by
// releasing the turn itself, so Goodbye does not wait for a response.
func (c *Channel) Goodbye(ctx context.Context, id int32) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	c.rec.putRequest(Request{ClientID: id, Registered: true, Terminate: true})
	return c.request.Post()
}

func (c *Channel) acquire(ctx context.Context) error {
	if err := c.turn.Wait(ctx); err != nil {
		return err
	}
	if c.rec.Terminate {
		return ErrShutdown
	}
	return nil
}

// awaitResponse waits for the server's answer. ok reports whether a
// response was actually consumed; only then may the turn be handed back.
// A cancelled ctx does not abandon a request already sent: the wait goes on
// for ResponseGrace, and a response that arrives in time is returned
// together with ctx's error.
func (c *Channel) awaitResponse(ctx context.Context) (resp Response, ok bool, err error) {
	shutdown := func() bool { return c.rec.Terminate }

	err = c.response.wait(ctx, shutdown)
	if err != nil && ctx.Err() != nil && !errors.Is(err, errAborted) {
		grace, cancel := context.WithTimeout(context.WithoutCancel(ctx), ResponseGrace)
		err = c.response.wait(grace, shutdown)
		cancel()
		if err != nil && !errors.Is(err, errAborted) {
			return Response{}, false, fmt.Errorf("no response from server: %w", ctx.Err())
		}
	}

	switch {
	case errors.Is(err, errAborted), err == nil && c.rec.Terminate:
		return Response{}, false, ErrShutdown
	case err != nil:
		return Response{}, false, err
	}
	return c.rec.response(), true, ctx.Err()
}

// ---------------------------------------------------------------- server

// AwaitRequest blocks until a client has written a request.
func (c *Channel) AwaitRequest(ctx context.Context) (Request, error) {
	if err := c.request.Wait(ctx); err != nil {
		return Request{}, err
	}
	return c.rec.request(), nil
}

// Respond writes resp and wakes the waiting client.
func (c *Channel) Respond(resp Response) error {
	c.rec.putResponse(resp)
	return c.response.Post()
}

// ReleaseTurn ends an exchange that gets no response (a goodbye): the flag
// the client raised is cleared and the turn is handed to the next client.
func (c *Channel) ReleaseTurn() error {
	c.rec.Terminate = false
	return c.turn.Post()
}

// Broadcast announces shutdown. The terminate flag is raised, a request
// that was sent but not served is answered so its sender wakes up, and the
// turn is released once per live session so every blocked client can
// observe the flag and leave.
func (c *Channel) Broadcast(sessions int) error {
	c.rec.Terminate = true

	var errs []error
	if c.request.TryWait() {
		errs = append(errs, c.response.Post())
	}
	for i := 0; i < sessions; i++ {
		errs = append(errs, c.turn.Post())
	}
	return errors.Join(errs...)
}
