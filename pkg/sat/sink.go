package sat

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	// Bytes reserved at the start of the file for the "p cnf" line (a newline follows them)
	headerWidth = 100
	// Weight of hard clauses in weighted mode
	DefaultTop int64 = 1000000000
)

type Options struct {
	ClauseLimit uint64 // Zero means unlimited
	Weighted    bool
	Top         int64
}

// Checkpoint is a snapshot of a ClauseSink that can be restored with Rollback
type Checkpoint struct {
	variables uint64
	clauses   uint64
	offset    int64
}

func (checkpoint Checkpoint) Variables() uint64 { return checkpoint.variables }
func (checkpoint Checkpoint) Clauses() uint64 { return checkpoint.clauses }
func (checkpoint Checkpoint) Offset() int64 { return checkpoint.offset }

// ClauseSink streams a DIMACS (or WCNF) body to a file whose header is patched on Finalize
type ClauseSink struct {
	path      string
	options   Options
	variables *VariableSpace
	clauses   uint64
	offset    int64 // Logical length of the file, buffered bytes included
	file      *os.File
	writer    *bufio.Writer
	context   []Literal
}

// Open creates (or truncates) the file at path and reserves the header region
func Open(path string, options Options) (*ClauseSink, error) {
	if options.Top == 0 {
		options.Top = DefaultTop
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create output file: %w", err)
	}

	sink := &ClauseSink{
		path:      path,
		options:   options,
		variables: NewVariableSpace(),
		file:      file,
		writer:    bufio.NewWriter(file),
	}

	if err := sink.write(strings.Repeat(" ", headerWidth) + "\n"); err != nil {
		return nil, errors.Join(err, sink.Abort())
	}
	if err := sink.writer.Flush(); err != nil {
		return nil, errors.Join(fmt.Errorf("cannot write header of %v: %w", path, err), sink.Abort())
	}

	return sink, nil
}

func (sink *ClauseSink) Path() string { return sink.path }
func (sink *ClauseSink) Variables() uint64 { return sink.variables.Count() }
func (sink *ClauseSink) Clauses() uint64 { return sink.clauses }
func (sink *ClauseSink) Weighted() bool { return sink.options.Weighted }
func (sink *ClauseSink) IsOpen() bool { return sink.writer != nil }
func (sink *ClauseSink) NewVariable() Literal { return sink.variables.Next() }

func (sink *ClauseSink) AddClause(literals ...Literal) error {
	if !sink.IsOpen() {
		return ErrSinkClosed
	}

	clause, ok := normalize(sink.context, literals)
	if !ok {
		return nil // Tautology
	}

	var builder strings.Builder
	if sink.options.Weighted {
		builder.WriteString(strconv.FormatInt(sink.options.Top, 10))
		builder.WriteByte(' ')
	}
	writeLiterals(&builder, clause)

	if err := sink.write(builder.String()); err != nil {
		return err
	}
	return sink.count()
}

func (sink *ClauseSink) AddSoftClause(literal Literal, weight int64) error {
	if !sink.options.Weighted {
		return ErrNotWeighted
	} else if !sink.IsOpen() {
		return ErrSinkClosed
	}

	clause, ok := normalize(nil, []Literal{literal})
	if !ok {
		return nil
	}

	var builder strings.Builder
	builder.WriteString(strconv.FormatInt(weight, 10))
	builder.WriteByte(' ')
	writeLiterals(&builder, clause)

	if err := sink.write(builder.String()); err != nil {
		return err
	}
	return sink.count()
}

func (sink *ClauseSink) AddComment(comment string) error {
	if !sink.IsOpen() {
		return ErrSinkClosed
	}
	return sink.write("c " + strings.ReplaceAll(comment, "\n", " ") + "\n")
}

// PushContext adds a literal that is prepended to every following clause until PopContext
func (sink *ClauseSink) PushContext(literal Literal) {
	sink.context = append(sink.context, literal)
}

func (sink *ClauseSink) PopContext() {
	if len(sink.context) == 0 {
		log.Panic("context literal stack is empty")
	}
	sink.context = sink.context[:len(sink.context)-1]
}

// Mark flushes pending output and snapshots the counters and the file length.
// It must only be called between whole encoding steps.
func (sink *ClauseSink) Mark() (Checkpoint, error) {
	if sink.IsOpen() {
		if err := sink.writer.Flush(); err != nil {
			return Checkpoint{}, fmt.Errorf("cannot flush %v: %w", sink.path, err)
		}
	}
	return Checkpoint{
		variables: sink.variables.Count(),
		clauses:   sink.clauses,
		offset:    sink.offset,
	}, nil
}

// Rollback truncates the file to the checkpoint, restores the counters and reopens the file for append
func (sink *ClauseSink) Rollback(checkpoint Checkpoint) error {
	if checkpoint.clauses > sink.clauses || checkpoint.variables > sink.variables.Count() || checkpoint.offset > sink.offset {
		log.Panicf("rollback past the current state: checkpoint %+v, clauses %v, variables %v, offset %v",
			checkpoint, sink.clauses, sink.variables.Count(), sink.offset)
	}

	// Everything still buffered was written after the checkpoint, so it is dropped
	if sink.file != nil {
		sink.file.Close()
		sink.file, sink.writer = nil, nil
	}

	if err := os.Truncate(sink.path, checkpoint.offset); err != nil {
		return fmt.Errorf("cannot truncate %v: %w", sink.path, err)
	}

	sink.variables.restore(checkpoint.variables)
	sink.clauses = checkpoint.clauses

	return sink.Reopen()
}

// Finalize flushes and syncs the body, then writes the header with the exact totals
func (sink *ClauseSink) Finalize() error {
	if sink.IsOpen() {
		if err := sink.close(); err != nil {
			return err
		}
	}

	var header string
	if sink.options.Weighted {
		header = fmt.Sprintf("p wcnf %d %d %d", sink.variables.Count(), sink.clauses, sink.options.Top)
	} else {
		header = fmt.Sprintf("p cnf %d %d", sink.variables.Count(), sink.clauses)
	}
	if len(header) > headerWidth {
		return ErrHeaderOverflow
	}
	// Pad with spaces in case a longer header was written by a previous Finalize
	header += strings.Repeat(" ", headerWidth-len(header))

	file, err := os.OpenFile(sink.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open %v to write the header: %w", sink.path, err)
	}
	defer file.Close()

	if _, err := file.WriteAt([]byte(header), 0); err != nil {
		return fmt.Errorf("cannot write header of %v: %w", sink.path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("cannot sync %v: %w", sink.path, err)
	}
	return file.Close()
}

// Reopen opens a finalized file for append. It is a no-op on an open sink.
func (sink *ClauseSink) Reopen() error {
	if sink.IsOpen() {
		return nil
	}

	file, err := os.OpenFile(sink.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("cannot reopen %v: %w", sink.path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("cannot stat %v: %w", sink.path, err)
	}

	sink.file = file
	sink.writer = bufio.NewWriter(file)
	sink.offset = info.Size()
	return nil
}

// AddClausesAfterFinalize appends clauses to a finalized file and finalizes it again.
// The returned checkpoint undoes the addition through RemoveClausesAfterFinalize.
func (sink *ClauseSink) AddClausesAfterFinalize(clauses ...[]Literal) (Checkpoint, error) {
	if err := sink.Reopen(); err != nil {
		return Checkpoint{}, err
	}
	checkpoint, err := sink.Mark()
	if err != nil {
		return Checkpoint{}, err
	}
	for _, clause := range clauses {
		if err := sink.AddClause(clause...); err != nil {
			return checkpoint, err
		}
	}
	return checkpoint, sink.Finalize()
}

func (sink *ClauseSink) RemoveClausesAfterFinalize(checkpoint Checkpoint) error {
	if err := sink.Rollback(checkpoint); err != nil {
		return err
	}
	return sink.Finalize()
}

// Abort releases the file handle and removes the file, so no partial output is left behind
func (sink *ClauseSink) Abort() error {
	if sink.file != nil {
		sink.file.Close()
		sink.file, sink.writer = nil, nil
	}
	if err := os.Remove(sink.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot remove %v: %w", sink.path, err)
	}
	return nil
}

func (sink *ClauseSink) close() error {
	defer func() { sink.file, sink.writer = nil, nil }()

	if err := sink.writer.Flush(); err != nil {
		sink.file.Close()
		return fmt.Errorf("cannot flush %v: %w", sink.path, err)
	}
	if err := sink.file.Sync(); err != nil {
		sink.file.Close()
		return fmt.Errorf("cannot sync %v: %w", sink.path, err)
	}
	if err := sink.file.Close(); err != nil {
		return fmt.Errorf("cannot close %v: %w", sink.path, err)
	}
	return nil
}

func (sink *ClauseSink) write(text string) error {
	if !sink.IsOpen() {
		return ErrSinkClosed
	}
	written, err := sink.writer.WriteString(text)
	sink.offset += int64(written)
	if err != nil {
		return fmt.Errorf("cannot write to %v: %w", sink.path, err)
	}
	return nil
}

func (sink *ClauseSink) count() error {
	sink.clauses++
	if sink.options.ClauseLimit != 0 && sink.clauses > sink.options.ClauseLimit {
		return fmt.Errorf("%w: more than %d clauses", ErrClauseLimitExceeded, sink.options.ClauseLimit)
	}
	return nil
}

func writeLiterals(builder *strings.Builder, clause []Literal) {
	for _, literal := range clause {
		builder.WriteString(strconv.FormatInt(int64(literal), 10))
		builder.WriteByte(' ')
	}
	builder.WriteString("0\n")
}
