// Package statements splits migration scripts into statements that can be sent to the
// server one at a time.
package statements

import (
	"errors"
	"fmt"
	"github.com/Maksumys/dbschema/internal/models"
	"strings"
)

const defaultDelimiter = ";"

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("malformed script")

// ParseError reports where a script could not be split.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", ErrParse, e.Line, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Split возвращает инструкции скрипта в исходном порядке. Комментарии "--" удаляются,
// директива DELIMITER (MySQL) меняет разделитель, тела в $$ (PostgreSQL) не разбиваются.
// Каждая инструкция, закрытая разделителем, завершается ";" независимо от того, какой
// разделитель действовал в скрипте.
func Split(script string, engine models.Engine) ([]string, error) {
	s := newScanner(script, engine)
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.statements, nil
}

type state int

const (
	stateTop state = iota
	stateQuoted
	stateDollarQuoted
	stateBlockComment
)

type scanner struct {
	src       string
	engine    models.Engine
	pos       int
	line      int
	delimiter string

	state     state
	quote     byte
	escapes   bool
	dollarTag string
	openedAt  int
	depth     int

	current    []byte
	statements []string
}

func newScanner(src string, engine models.Engine) *scanner {
	return &scanner{
		src:       src,
		engine:    engine,
		line:      1,
		delimiter: defaultDelimiter,
	}
}

func (s *scanner) run() error {
	for s.pos < len(s.src) {
		switch s.state {
		case stateQuoted:
			s.scanQuoted()
		case stateDollarQuoted:
			s.scanDollarQuoted()
		case stateBlockComment:
			s.scanBlockComment()
		default:
			if err := s.scanTop(); err != nil {
				return err
			}
		}
	}

	switch s.state {
	case stateQuoted:
		return s.errorf(s.openedAt, "unterminated %c-quoted literal", s.quote)
	case stateDollarQuoted:
		return s.errorf(s.openedAt, "unterminated dollar-quoted body %s", s.dollarTag)
	case stateBlockComment:
		return s.errorf(s.openedAt, "unterminated block comment")
	}

	// end of input acts as the last delimiter
	s.flush("")
	return nil
}

func (s *scanner) scanTop() error {
	if s.engine == models.EngineMySQL && s.atDirectivePosition() {
		handled, err := s.scanDirective()
		if handled || err != nil {
			return err
		}
	}

	rest := s.src[s.pos:]
	switch {
	case strings.HasPrefix(rest, s.delimiter):
		s.skip(len(s.delimiter))
		s.flush(defaultDelimiter)
	case strings.HasPrefix(rest, "--"):
		s.skipComment()
	case strings.HasPrefix(rest, "/*"):
		s.state = stateBlockComment
		s.openedAt = s.line
		s.emit(2)
	default:
		c := rest[0]
		switch {
		case c == '\'' || c == '"' || c == '`' && s.engine == models.EngineMySQL:
			s.openQuote(c)
		case c == '$' && s.engine == models.EnginePostgreSQL:
			if tag := s.dollarTagAt(); tag != "" {
				s.state = stateDollarQuoted
				s.dollarTag = tag
				s.openedAt = s.line
				s.emit(len(tag))
				return nil
			}
			s.emit(1)
		case c == '(':
			s.depth++
			s.emit(1)
		case c == ')':
			if s.depth > 0 {
				s.depth--
			}
			s.emit(1)
		default:
			s.emit(1)
		}
	}
	return nil
}

// atDirectivePosition reports whether the scanner sits at the beginning of a line outside
// any parentheses. A column called delimiter inside a table definition stays plain text.
func (s *scanner) atDirectivePosition() bool {
	if s.pos > 0 && s.src[s.pos-1] != '\n' {
		return false
	}
	return s.depth == 0
}

func (s *scanner) scanDirective() (bool, error) {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src) - s.pos
	}

	line := s.src[s.pos : s.pos+end]
	if i := strings.Index(line, "--"); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.EqualFold(fields[0], "DELIMITER") {
		return false, nil
	}
	if len(fields) != 2 {
		if !s.nothingPending() {
			return false, nil
		}
		return true, s.errorf(s.line, "DELIMITER directive expects exactly one token, got %d", len(fields)-1)
	}

	// text left before the directive ends there
	s.flush("")
	s.delimiter = fields[1]
	s.skip(end)
	return true, nil
}

func (s *scanner) skipComment() {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src) - s.pos
	}
	for n := len(s.current); n > 0 && (s.current[n-1] == ' ' || s.current[n-1] == '\t'); n-- {
		s.current = s.current[:n-1]
	}
	s.skip(end)
}

func (s *scanner) openQuote(c byte) {
	s.state = stateQuoted
	s.quote = c
	s.openedAt = s.line
	switch s.engine {
	case models.EngineMySQL:
		s.escapes = c != '`'
	default:
		s.escapes = c == '\'' && s.escapeStringPrefix()
	}
	s.emit(1)
}

// escapeStringPrefix detects PostgreSQL E'...' literals.
func (s *scanner) escapeStringPrefix() bool {
	if s.pos == 0 || (s.src[s.pos-1] != 'E' && s.src[s.pos-1] != 'e') {
		return false
	}
	return s.pos == 1 || !isIdentByte(s.src[s.pos-2])
}

func (s *scanner) scanQuoted() {
	c := s.src[s.pos]
	if s.escapes && c == '\\' && s.pos+1 < len(s.src) {
		s.emit(2)
		return
	}
	if c == s.quote {
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == s.quote {
			s.emit(2)
			return
		}
		s.state = stateTop
	}
	s.emit(1)
}

func (s *scanner) scanDollarQuoted() {
	end := strings.Index(s.src[s.pos:], s.dollarTag)
	if end < 0 {
		s.emit(len(s.src) - s.pos)
		return
	}
	s.emit(end + len(s.dollarTag))
	s.state = stateTop
	s.dollarTag = ""
}

func (s *scanner) scanBlockComment() {
	end := strings.Index(s.src[s.pos:], "*/")
	if end < 0 {
		s.emit(len(s.src) - s.pos)
		return
	}
	s.emit(end + 2)
	s.state = stateTop
}

// dollarTagAt returns "$$" or "$tag$" when one opens at the current position.
func (s *scanner) dollarTagAt() string {
	if s.pos > 0 && isIdentByte(s.src[s.pos-1]) {
		return ""
	}
	for i := s.pos + 1; i < len(s.src); i++ {
		c := s.src[i]
		if c == '$' {
			return s.src[s.pos : i+1]
		}
		if !isLetter(c) && c != '_' && (i == s.pos+1 || !isDigit(c)) {
			return ""
		}
	}
	return ""
}

func (s *scanner) emit(n int) {
	chunk := s.src[s.pos : s.pos+n]
	s.current = append(s.current, chunk...)
	s.line += strings.Count(chunk, "\n")
	s.pos += n
}

func (s *scanner) skip(n int) {
	s.line += strings.Count(s.src[s.pos:s.pos+n], "\n")
	s.pos += n
}

func (s *scanner) flush(terminator string) {
	stmt := strings.TrimSpace(string(s.current))
	s.current = s.current[:0]
	s.depth = 0
	if commentOnly(stmt) {
		return
	}
	s.statements = append(s.statements, stmt+terminator)
}

// nothingPending reports whether only whitespace and comments wait for a delimiter.
func (s *scanner) nothingPending() bool {
	return commentOnly(strings.TrimSpace(string(s.current)))
}

// commentOnly reports whether stmt holds nothing but whitespace and /* */ comments.
// MySQL conditional comments /*! */ are executed by the server and count as text.
func commentOnly(stmt string) bool {
	for strings.HasPrefix(stmt, "/*") && !strings.HasPrefix(stmt, "/*!") {
		end := strings.Index(stmt[2:], "*/")
		if end < 0 {
			return false
		}
		stmt = strings.TrimSpace(stmt[end+4:])
	}
	return stmt == ""
}

func (s *scanner) errorf(line int, format string, args ...interface{}) error {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '$'
}
