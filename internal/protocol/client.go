// File: internal/protocol/client.go
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// 裁判服务器的行协议头
const (
	HeaderPlayer    = "PLAYER:"
	HeaderTimeLimit = "TURN_TIME_LIMIT:"
	HeaderPiece     = "Q1:" // 请挑一颗子
	HeaderMove      = "Q2:" // 请放下这颗子
	HeaderAckPiece  = "ACK_PIECE:"
	HeaderErrPiece  = "ERR_PIECE:"
	HeaderAckMove   = "ACK_MOVE:"
	HeaderErrMove   = "ERR_MOVE:"
	HeaderOppMove   = "MOVE:"
	HeaderInfo      = "INFO:"
	HeaderGameOver  = "GAME_OVER:"
)

var (
	ErrTurnOrder = errors.New("protocol: turn order out of sync")
	ErrMalformed = errors.New("protocol: malformed message")
)

// Message 一行消息：头 + 空白分隔的参数
type Message struct {
	Header string
	Args   []string
}

func (m Message) Arg(i int) (string, error) {
	if i >= len(m.Args) {
		return "", fmt.Errorf("%w: %s missing argument %d", ErrMalformed, m.Header, i)
	}
	return m.Args[i], nil
}

func (m Message) String() string {
	return strings.TrimSpace(m.Header + " " + strings.Join(m.Args, " "))
}

func ParseMessage(line string) (Message, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Message{}, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	return Message{Header: f[0], Args: f[1:]}, nil
}

// ———————————————————————————— 连接 ————————————————————————————

type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	Timeout time.Duration // 单次读超时；0 表示不限
}

func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

// Dial 连接裁判，失败时按 retries 重试
func Dial(ctx context.Context, addr string, retries int) (*Client, error) {
	var d net.Dialer
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		var conn net.Conn
		conn, err = d.DialContext(ctx, "tcp", addr)
		if err == nil {
			log.Info().Str("addr", addr).Msg("connected")
			return NewClient(conn), nil
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("dial-failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil, fmt.Errorf("protocol: dial %s: %w", addr, err)
}

// Read 读一条消息；INFO 行只记日志，继续读下一条
func (c *Client) Read() (Message, error) {
	for {
		if c.Timeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.Timeout))
		}
		line, err := c.r.ReadString('\n')
		if err != nil && line == "" {
			return Message{}, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		m, perr := ParseMessage(line)
		if perr != nil {
			return Message{}, perr
		}
		if m.Header == HeaderInfo {
			log.Info().Str("info", strings.Join(m.Args, " ")).Msg("server-info")
			continue
		}
		log.Debug().Str("msg", m.String()).Msg("recv")
		return m, nil
	}
}

func (c *Client) Send(s string) error {
	log.Debug().Str("msg", s).Msg("send")
	_, err := c.conn.Write([]byte(s + "\n"))
	return err
}

func (c *Client) Close() error { return c.conn.Close() }
