package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/trillian"
	trillianTypes "github.com/google/trillian/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func testEntries() []Entry {
	at := time.Unix(1700000000, 0).UTC()
	return []Entry{
		{Time: at, AccountID: "0.0.1003", TokenID: "0.0.500", SerialNumber: 1,
			MintTxID: "0.0.2@1700000000.000000001", TransferTxID: "0.0.2@1700000000.000000002", Status: StatusCompleted},
		{Time: at, AccountID: "0.0.1004", TokenID: "0.0.500", SerialNumber: 2,
			MintTxID: "0.0.2@1700000001.000000001", Status: StatusPartial, Error: "transfer failed"},
		{Time: at, AccountID: "0.0.1005", TokenID: "0.0.500", SerialNumber: 3,
			MintTxID: "0.0.2@1700000002.000000001", TransferTxID: "0.0.2@1700000002.000000002", Status: StatusCompleted},
	}
}

func testJournal(t *testing.T, j Journal) {
	t.Helper()
	ctx := context.Background()
	entries := testEntries()
	for _, e := range entries {
		if err := j.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	for _, table := range []struct {
		status Status
		want   []Entry
	}{
		{"", entries},
		{StatusPartial, entries[1:2]},
		{StatusCompleted, []Entry{entries[0], entries[2]}},
	} {
		got, err := j.List(ctx, table.status)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, table.want) {
			t.Errorf("status %q: got %v, wanted %v", table.status, got, table.want)
		}
	}
}

func TestMemory(t *testing.T) {
	testJournal(t, NewMemory())
}

func TestParseStatus(t *testing.T) {
	for _, table := range []struct {
		in     string
		wantOk bool
	}{
		{"", true},
		{"partial", true},
		{"completed", true},
		{"failed", false},
	} {
		if _, ok := ParseStatus(table.in); ok != table.wantOk {
			t.Errorf("%q: got %v, wanted %v", table.in, ok, table.wantOk)
		}
	}
}

// fakeLog keeps queued leaves in memory, and returns at most maxLeaves per
// range request.
type fakeLog struct {
	trillian.TrillianLogClient
	leaves    []*trillian.LogLeaf
	maxLeaves int
	queueErr  error
}

func (f *fakeLog) QueueLeaf(_ context.Context, req *trillian.QueueLeafRequest, _ ...grpc.CallOption) (*trillian.QueueLeafResponse, error) {
	if f.queueErr != nil {
		return nil, f.queueErr
	}
	leaf := &trillian.LogLeaf{LeafValue: req.Leaf.LeafValue, LeafIndex: int64(len(f.leaves))}
	f.leaves = append(f.leaves, leaf)
	return &trillian.QueueLeafResponse{QueuedLeaf: &trillian.QueuedLogLeaf{Leaf: leaf}}, nil
}

func (f *fakeLog) GetLatestSignedLogRoot(context.Context, *trillian.GetLatestSignedLogRootRequest, ...grpc.CallOption) (*trillian.GetLatestSignedLogRootResponse, error) {
	root, err := (&trillianTypes.LogRootV1{TreeSize: uint64(len(f.leaves)), RootHash: make([]byte, 32)}).MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &trillian.GetLatestSignedLogRootResponse{SignedLogRoot: &trillian.SignedLogRoot{LogRoot: root}}, nil
}

func (f *fakeLog) GetLeavesByRange(_ context.Context, req *trillian.GetLeavesByRangeRequest, _ ...grpc.CallOption) (*trillian.GetLeavesByRangeResponse, error) {
	end := req.StartIndex + req.Count
	if end > req.StartIndex+int64(f.maxLeaves) {
		end = req.StartIndex + int64(f.maxLeaves)
	}
	if end > int64(len(f.leaves)) {
		end = int64(len(f.leaves))
	}
	return &trillian.GetLeavesByRangeResponse{Leaves: f.leaves[req.StartIndex:end]}, nil
}

func TestTrillian(t *testing.T) {
	// One leaf per range request exercises the paging.
	testJournal(t, NewTrillian(1, &fakeLog{maxLeaves: 1}))
}

func TestTrillianAppendErrors(t *testing.T) {
	for _, table := range []struct {
		description string
		err         error
		wantErr     bool
	}{
		{"ok", nil, false},
		{"duplicate", status.Error(codes.AlreadyExists, "exists"), false},
		{"backend failure", fmt.Errorf("something went wrong"), true},
	} {
		j := NewTrillian(1, &fakeLog{maxLeaves: 10, queueErr: table.err})
		err := j.Append(context.Background(), testEntries()[0])
		if got, want := err != nil, table.wantErr; got != want {
			t.Errorf("%s: got error %v, wanted error %v", table.description, err, want)
		}
	}
}

func TestTrillianInvalidLeaf(t *testing.T) {
	f := &fakeLog{maxLeaves: 10}
	f.leaves = append(f.leaves, &trillian.LogLeaf{LeafValue: []byte("not json")})
	if _, err := NewTrillian(1, f).List(context.Background(), ""); err == nil {
		t.Errorf("invalid leaf accepted")
	}
}

func TestReadTreeId(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tree-id")
	if err := os.WriteFile(file, []byte("tree-id=4711\n"), 0644); err != nil {
		t.Fatal(err)
	}
	id, err := ReadTreeId(file)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := id, int64(4711); got != want {
		t.Errorf("got tree id %d, wanted %d", got, want)
	}
	if _, err := ReadTreeId(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("missing file accepted")
	}
}

func TestWriteTreeId(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tree-id")
	if err := WriteTreeId(file, 17); err != nil {
		t.Fatal(err)
	}
	if id, err := ReadTreeId(file); err != nil || id != 17 {
		t.Errorf("got tree id %d (err %v), wanted 17", id, err)
	}
	if err := WriteTreeId(file, 18); err == nil {
		t.Errorf("existing tree id file overwritten")
	}
	if id, _ := ReadTreeId(file); id != 17 {
		t.Errorf("tree id changed to %d", id)
	}
}
