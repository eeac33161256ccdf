package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hozondb/hozon-db/pkg/compression"
	"github.com/hozondb/hozon-db/pkg/database"
	"github.com/hozondb/hozon-db/pkg/executor"
)

const prompt = "hozon> "

// Repl is an interactive SQL shell over one open database. Input and output
// are plain streams so tests can drive it without a terminal.
type Repl struct {
	db  *database.Database
	in  io.Reader
	out io.Writer
}

// New creates a shell over an open database
func New(db *database.Database, in io.Reader, out io.Writer) *Repl {
	return &Repl{db: db, in: in, out: out}
}

// Database returns the shell's current database
func (r *Repl) Database() *database.Database {
	return r.db
}

// Run reads statements until .exit or end of input. Statement errors are
// printed and the loop continues; only I/O failures end the session early.
func (r *Repl) Run() error {
	fmt.Fprintf(r.out, "hozondb (%s)\ntype .help for usage\n", r.db.Path())

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := r.dispatchMeta(line); quit {
				return nil
			}
			continue
		}

		result, err := r.db.Exec(line)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}
		r.renderResult(result)
	}
}

// dispatchMeta handles dot commands, returning true when the session should
// end.
func (r *Repl) dispatchMeta(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".exit", ".quit":
		return true

	case ".help":
		fmt.Fprint(r.out, helpText)

	case ".tables":
		tables := r.db.Tables()
		if len(tables) == 0 {
			fmt.Fprintln(r.out, "no tables")
			break
		}
		for _, name := range tables {
			fmt.Fprintln(r.out, name)
		}

	case ".stats":
		stats := r.db.Stats()
		fmt.Fprintf(r.out, "path: %s\npages: %d\ntables: %d\n", stats.Path, stats.Pages, len(stats.Tables))

	case ".open":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: .open <path>")
			break
		}
		r.openDatabase(fields[1])

	case ".backup":
		if len(fields) < 2 || len(fields) > 3 {
			fmt.Fprintln(r.out, "usage: .backup <path> [none|snappy|zstd|gzip]")
			break
		}
		r.backupDatabase(fields[1:])

	default:
		fmt.Fprintf(r.out, "unknown command %s (try .help)\n", fields[0])
	}
	return false
}

func (r *Repl) openDatabase(path string) {
	db, err := database.Open(path)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if err := r.db.Close(); err != nil {
		fmt.Fprintf(r.out, "warning: failed to close %s: %v\n", r.db.Path(), err)
	}
	r.db = db
	fmt.Fprintf(r.out, "opened %s\n", path)
}

func (r *Repl) backupDatabase(args []string) {
	algorithm := compression.AlgorithmZstd
	if len(args) == 2 {
		var err error
		algorithm, err = compression.ParseAlgorithm(args[1])
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return
		}
	}

	file, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	defer file.Close()

	if err := r.db.Backup(file, algorithm); err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "backup written to %s (%s)\n", args[0], algorithm)
}

func (r *Repl) renderResult(result *executor.Result) {
	if len(result.Columns) == 0 {
		fmt.Fprintln(r.out, result.Message)
		return
	}

	widths := make([]int, len(result.Columns))
	for i, name := range result.Columns {
		widths[i] = len(name)
	}
	cells := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		cells[i] = make([]string, len(row.Values))
		for j, value := range row.Values {
			cells[i][j] = value.String()
			if len(cells[i][j]) > widths[j] {
				widths[j] = len(cells[i][j])
			}
		}
	}

	r.renderLine(result.Columns, widths)
	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	r.renderLine(separators, widths)
	for _, row := range cells {
		r.renderLine(row, widths)
	}
	fmt.Fprintln(r.out, result.Message)
}

func (r *Repl) renderLine(cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	fmt.Fprintln(r.out, strings.Join(parts, " | "))
}

const helpText = `.help                          show this help
.tables                        list tables
.stats                         show database statistics
.open <path>                   switch to another database file
.backup <path> [algorithm]     write a compressed backup (none|snappy|zstd|gzip)
.exit                          quit
`
