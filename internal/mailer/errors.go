package mailer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strings"

	"github.com/wneessen/go-mail"
)

// ErrorKind classifies SMTP failures.
type ErrorKind string

// Failure kinds reported by Send.
const (
	KindAuth       ErrorKind = "authentication"
	KindRecipient  ErrorKind = "recipient"
	KindSender     ErrorKind = "sender"
	KindConnection ErrorKind = "connection"
	KindSMTP       ErrorKind = "smtp"
)

// SendError is the single descriptive error returned for a failed send.
type SendError struct {
	Err       error
	Kind      ErrorKind
	Recipient string
}

func (e *SendError) Error() string {
	var msg string
	switch e.Kind {
	case KindAuth:
		msg = "SMTP authentication failed, check SMTP_USERNAME and SMTP_PASSWORD (an app password may be required)"
	case KindRecipient:
		msg = "recipient rejected"
	case KindSender:
		msg = "invalid sender address"
	case KindConnection:
		msg = "SMTP connection failed"
	default:
		msg = "SMTP error"
	}
	if e.Recipient != "" {
		msg += fmt.Sprintf(" (%s)", e.Recipient)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// classify maps a go-mail or SMTP protocol error to a failure kind.
func classify(err error) ErrorKind {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		switch sendErr.Reason {
		case mail.ErrSMTPRcptTo, mail.ErrGetRcpts:
			return KindRecipient
		case mail.ErrSMTPMailFrom, mail.ErrGetSender:
			return KindSender
		case mail.ErrConnCheck:
			return KindConnection
		}
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535, 538:
			return KindAuth
		case 450, 501, 550, 551, 552, 553:
			return KindRecipient
		case 421:
			return KindConnection
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return KindConnection
	}

	if strings.Contains(strings.ToLower(err.Error()), "auth") {
		return KindAuth
	}
	return KindSMTP
}
