package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"git.glasklar.is/sigsum/dependencies/safefile"
	"github.com/google/trillian"
	trillianClient "github.com/google/trillian/client"
	trillianTypes "github.com/google/trillian/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"sigsum.org/sigsum-go/pkg/ascii"
	"sigsum.org/sigsum-go/pkg/log"
)

// Maximum number of leaves requested per GetLeavesByRange call.
const leavesPerRequest = 256

// Trillian stores the journal as leaves of a Trillian log, one JSON
// encoded entry per leaf. Entries become visible to List once Trillian has
// sequenced them.
type Trillian struct {
	// treeID is a Merkle tree identifier that Trillian uses
	treeID int64

	// logClient is a Trillian gRPC client
	logClient trillian.TrillianLogClient
}

func NewTrillian(treeID int64, logClient trillian.TrillianLogClient) *Trillian {
	return &Trillian{treeID: treeID, logClient: logClient}
}

// DialTrillian connects to a Trillian log server, and checks that the
// tree named in treeIdFile exists and is a plain log.
func DialTrillian(target string, timeout time.Duration, treeIdFile string) (*Trillian, error) {
	treeId, err := ReadTreeId(treeIdFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree id: %v", err)
	}

	conn, err := grpc.Dial(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connection to trillian failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	tree, err := trillian.NewTrillianAdminClient(conn).GetTree(
		ctx, &trillian.GetTreeRequest{TreeId: treeId})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if tree.TreeType != trillian.TreeType_LOG {
		conn.Close()
		return nil, fmt.Errorf("trillian tree of type %s, but must be of type LOG for a mint journal",
			tree.TreeType.String())
	}
	return NewTrillian(treeId, trillian.NewTrillianLogClient(conn)), nil
}

// ReadTreeId reads a file of the form "tree-id=<decimal>".
func ReadTreeId(file string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	p := ascii.NewParser(f)
	id, err := p.GetInt("tree-id")
	if err != nil {
		return 0, err
	}
	return int64(id), nil
}

// WriteTreeId atomically creates a tree id file. Fails if it already
// exists.
func WriteTreeId(file string, id int64) error {
	f, err := safefile.Create(file, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "tree-id=%d\n", id); err != nil {
		return err
	}
	return f.CommitIfNotExists()
}

// CreateTree creates and initializes a new Trillian log tree for a
// journal, and returns its id.
func CreateTree(ctx context.Context, conn grpc.ClientConnInterface, displayName string) (int64, error) {
	tree, err := trillianClient.CreateAndInitTree(ctx, &trillian.CreateTreeRequest{
		Tree: &trillian.Tree{
			TreeState:   trillian.TreeState_ACTIVE,
			TreeType:    trillian.TreeType_LOG,
			DisplayName: displayName,
			Description: "mint journal",
		},
	}, trillian.NewTrillianAdminClient(conn), trillian.NewTrillianLogClient(conn))
	if err != nil {
		return 0, fmt.Errorf("creating trillian tree failed: %w", err)
	}
	log.Info("created trillian tree %d", tree.TreeId)
	return tree.TreeId, nil
}

func (c *Trillian) Append(ctx context.Context, e Entry) error {
	blob, err := json.Marshal(e)
	if err != nil {
		return err
	}
	log.Debug("queueing journal entry: %s", blob)
	rsp, err := c.logClient.QueueLeaf(ctx, &trillian.QueueLeafRequest{
		LogId: c.treeID,
		Leaf:  &trillian.LogLeaf{LeafValue: blob},
	})
	switch status.Code(err) {
	case codes.OK:
		if rsp != nil && rsp.QueuedLeaf != nil && rsp.QueuedLeaf.Status != nil &&
			codes.Code(rsp.QueuedLeaf.Status.Code) == codes.AlreadyExists {
			log.Debug("journal entry already exists")
		}
		return nil
	case codes.AlreadyExists:
		return nil
	default:
		return fmt.Errorf("back-end rpc failure: %v", err)
	}
}

func (c *Trillian) treeSize(ctx context.Context) (int64, error) {
	rsp, err := c.logClient.GetLatestSignedLogRoot(ctx, &trillian.GetLatestSignedLogRootRequest{
		LogId: c.treeID,
	})
	if err != nil {
		return 0, fmt.Errorf("backend failure: %v", err)
	}
	if rsp == nil || rsp.SignedLogRoot == nil || rsp.SignedLogRoot.LogRoot == nil {
		return 0, fmt.Errorf("no log root")
	}
	var r trillianTypes.LogRootV1
	if err := r.UnmarshalBinary(rsp.SignedLogRoot.LogRoot); err != nil {
		return 0, fmt.Errorf("no log root: unmarshal failed: %v", err)
	}
	return int64(r.TreeSize), nil
}

func (c *Trillian) List(ctx context.Context, status Status) ([]Entry, error) {
	size, err := c.treeSize(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, size)
	for start := int64(0); start < size; {
		count := size - start
		if count > leavesPerRequest {
			count = leavesPerRequest
		}
		rsp, err := c.logClient.GetLeavesByRange(ctx, &trillian.GetLeavesByRangeRequest{
			LogId:      c.treeID,
			StartIndex: start,
			Count:      count,
		})
		if err != nil {
			return nil, fmt.Errorf("backend failure: %v", err)
		}
		// Trillian may return fewer leaves than requested, but never none.
		if rsp == nil || len(rsp.Leaves) == 0 {
			return nil, fmt.Errorf("no leaves at index %d", start)
		}
		for _, leaf := range rsp.Leaves {
			var e Entry
			if err := json.Unmarshal(leaf.LeafValue, &e); err != nil {
				return nil, fmt.Errorf("invalid journal leaf at index %d: %v", leaf.LeafIndex, err)
			}
			entries = append(entries, e)
		}
		start += int64(len(rsp.Leaves))
	}
	return filter(entries, status), nil
}
