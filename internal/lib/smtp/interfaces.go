// Package smtp предоставляет SMTP-транспорт для отправки писем и
// сборку текстовых сообщений.
package smtp

import "io"

// Client интерфейс для SMTP клиента.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
