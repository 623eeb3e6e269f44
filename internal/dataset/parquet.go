// Package dataset exports recorded self-play steps as Parquet files for
// external learners.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/sim"
)

// Schema is written into every file's key/value metadata.
const Schema = "snakesim_step_v1"

// Row is a single recorded tick.
//
// State and NextState hold one byte per cell, row-major, using the
// snake.CellCode values. NextState is null on terminal rows. Direction and
// NextDirection are core.Direction ordinals: 0=Left, 1=Up, 2=Right, 3=Down.
type Row struct {
	RunID         string `parquet:"run_id,dict"`
	Episode       int32  `parquet:"episode"`
	Turn          int32  `parquet:"turn"`
	Rows          int32  `parquet:"rows"`
	Cols          int32  `parquet:"cols"`
	State         []byte `parquet:"state"`
	Heading       int32  `parquet:"heading"`
	Direction     int32  `parquet:"direction"`
	Reward        string `parquet:"reward,dict"`
	Shaped        bool   `parquet:"shaped"`
	NextState     []byte `parquet:"next_state,optional"`
	NextDirection int32  `parquet:"next_direction"`
	Terminal      bool   `parquet:"terminal"`
}

// RowsFromBatch flattens every episode of b into rows tagged with runID.
func RowsFromBatch(runID string, b *sim.Batch) []Row {
	var rows []Row
	for _, ep := range b.Episodes {
		for turn, st := range ep.Steps {
			rows = append(rows, rowFromStep(runID, ep.Index, turn, st))
		}
	}
	return rows
}

func rowFromStep(runID string, episode, turn int, st sim.Step) Row {
	r := Row{
		RunID:         runID,
		Episode:       int32(episode),
		Turn:          int32(turn),
		Rows:          int32(st.Snapshot.Rows),
		Cols:          int32(st.Snapshot.Cols),
		State:         st.Snapshot.Bytes(),
		Heading:       int32(st.Snapshot.Direction),
		Direction:     int32(st.Direction),
		Reward:        st.Reward.String(),
		Shaped:        st.Shaped,
		NextDirection: -1,
		Terminal:      st.Terminal(),
	}
	if st.Next != nil {
		r.NextState = st.Next.Bytes()
		r.NextDirection = int32(st.Next.Direction)
	}
	return r
}

// Step rebuilds the recorded step.
func (r Row) Step() (sim.Step, error) {
	state, err := snake.DecodeSnapshot(int(r.Rows), int(r.Cols), core.Direction(r.Heading), r.State)
	if err != nil {
		return sim.Step{}, fmt.Errorf("dataset: row %d/%d: %w", r.Episode, r.Turn, err)
	}
	reward, err := ParseReward(r.Reward)
	if err != nil {
		return sim.Step{}, err
	}
	st := sim.Step{
		Snapshot:  state,
		Direction: core.Direction(r.Direction),
		Reward:    reward,
		Shaped:    r.Shaped,
	}
	if !r.Terminal {
		next, err := snake.DecodeSnapshot(int(r.Rows), int(r.Cols), core.Direction(r.NextDirection), r.NextState)
		if err != nil {
			return sim.Step{}, fmt.Errorf("dataset: row %d/%d next: %w", r.Episode, r.Turn, err)
		}
		st.Next = &next
	}
	return st, nil
}

// ParseReward is the inverse of sim.Reward.String.
func ParseReward(s string) (sim.Reward, error) {
	for _, r := range []sim.Reward{sim.RewardStep, sim.RewardFood, sim.RewardWon, sim.RewardLost} {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("dataset: unknown reward %q", s)
}

// Write stores rows at outPath, replacing any existing file.
func Write(outPath string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("dataset: create output dir: %w", err)
	}

	// Write to a temp file and rename atomically.
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.SkipPageBounds("state"),
		parquet.SkipPageBounds("next_state"),
		parquet.KeyValueMetadata("schema", Schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("dataset: write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("dataset: rename parquet: %w", err)
	}
	return nil
}

// WriteBatch exports b into outDir under a name derived from runID and
// returns the final path.
func WriteBatch(outDir, runID string, b *sim.Batch) (string, error) {
	name := runID
	if name == "" {
		name = fmt.Sprintf("batch_%d", time.Now().UnixNano())
	}
	outPath := filepath.Join(outDir, name+".parquet")
	if err := Write(outPath, RowsFromBatch(runID, b)); err != nil {
		return "", err
	}
	return outPath, nil
}

// Read loads every row of a file written by Write.
func Read(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return rows, nil
}
