package rwebserve

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxHeaderBlock bounds how many bytes readHeaderBlock accumulates
// before giving up on ever seeing a blank line, so a peer that never
// sends CRLF CRLF cannot grow the buffer without bound.
const maxHeaderBlock = 64 * 1024

// ServeConn drives one accepted connection end to end (§4.7): it derives
// and validates a ConnConfig, spawns the reader task, and runs the main
// select loop until the peer closes.
func ServeConn(cfg *Config, sock Socket) {
	defer sock.Close()

	ssePush := make(chan string, 16)
	cc := deriveConnConfig(cfg, ssePush)

	if problems := cc.Validate(); problems != "" {
		cfg.Logger.Errorf("invalid configuration, closing connection: %s", problems)
		return
	}

	localAddr, remoteAddr := sock.LocalAddr(), sock.RemoteAddr()

	requests := make(chan *ParsedRequestWithBody)
	go readLoop(sock, cfg.Logger, requests)

	for {
		select {
		case pr, ok := <-requests:
			if !ok {
				closeAllSSE(cc)
				return
			}
			header, body := processRequest(cc, pr.Req, localAddr, remoteAddr, pr.Body)
			if err := sock.Send(append([]byte(header), body...)); err != nil {
				cfg.Logger.Errorf("write failed: %v", err)
				closeAllSSE(cc)
				return
			}

		case frame, ok := <-ssePush:
			if !ok {
				continue
			}
			chunk := fmt.Sprintf("%X\r\n%s\r\n", len(frame), frame)
			if err := sock.Send([]byte(chunk)); err != nil {
				cfg.Logger.Errorf("sse write failed: %v", err)
				closeAllSSE(cc)
				return
			}
		}
	}
}

// ParsedRequestWithBody pairs a parsed header with the body bytes the
// reader task read off for it, if any.
type ParsedRequestWithBody struct {
	Req  *ParsedRequest
	Body []byte
}

// readLoop is the reader task (§4.7): it repeatedly reads one header
// block terminated by CRLF CRLF, parses it, reads any content-length
// body that follows, and sends the result on requests. It closes
// requests when the peer disconnects or a read fails, which the main
// loop treats as the connection's end.
func readLoop(sock Socket, logger *Logger, requests chan<- *ParsedRequestWithBody) {
	defer close(requests)

	for {
		headerBlock, err := readHeaderBlock(sock)
		if err != nil {
			if err != errPeerClosed {
				logger.Errorf("reading request: %v", err)
			}
			return
		}

		if !utf8.Valid(headerBlock) {
			logger.Errorf("dropping request: header block is not valid UTF-8")
			continue
		}

		pr, err := ParseRequestHeader(headerBlock)
		if err != nil {
			logger.Errorf("parsing request: %v", err)
			continue
		}

		var body []byte
		if cl, ok := pr.Headers["content-length"]; ok {
			n, convErr := strconv.Atoi(strings.TrimSpace(cl))
			if convErr == nil && n > 0 {
				body, err = readExactly(sock, n)
				if err != nil {
					logger.Errorf("reading request body: %v", err)
					return
				}
				if !utf8.Valid(body) {
					logger.Errorf("dropping request: body is not valid UTF-8")
					continue
				}
			}
		}

		requests <- &ParsedRequestWithBody{Req: pr, Body: body}
	}
}

var errPeerClosed = fmt.Errorf("peer closed the connection")

// readHeaderBlock reads from sock one byte at a time until it has seen
// the 4-byte sequence CRLF CRLF, and returns everything read so far
// (including that sequence).
func readHeaderBlock(sock Socket) ([]byte, error) {
	var buf bytes.Buffer
	for {
		if buf.Len() > maxHeaderBlock {
			return nil, fmt.Errorf("header block exceeds %d bytes", maxHeaderBlock)
		}

		b, err := sock.Recv(1)
		if err != nil {
			return nil, err
		}
		if len(b) == 0 {
			return nil, errPeerClosed
		}
		buf.WriteByte(b[0])

		if buf.Len() >= 4 && bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\n")) {
			return buf.Bytes(), nil
		}
	}
}

// readExactly reads exactly n bytes from sock, looping over short reads.
func readExactly(sock Socket, n int) ([]byte, error) {
	var buf bytes.Buffer
	for buf.Len() < n {
		b, err := sock.Recv(n - buf.Len())
		if err != nil {
			return nil, err
		}
		if len(b) == 0 {
			return nil, errPeerClosed
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}
