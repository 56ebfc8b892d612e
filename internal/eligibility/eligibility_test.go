package eligibility

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/golang/mock/gomock"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/mirror"
	mocksMirror "gamevault.dev/mint-go/internal/mocks/mirror"
	"gamevault.dev/mint-go/pkg/types"
)

const testCollection = types.TokenID("0.0.500")

type mirrorState struct {
	errAccount  error
	balances    []mirror.TokenBalance
	errBalances error
	nfts        []mirror.NFT
	errNFTs     error
}

// expect sets up the calls Evaluate makes, stopping where a check fails.
func (s *mirrorState) expect(m *mocksMirror.MockClient, id types.AccountID) {
	m.EXPECT().GetAccount(gomock.Any(), id).Return(mirror.AccountInfo{Account: id}, s.errAccount)
	if s.errAccount != nil {
		return
	}
	m.EXPECT().GetTokenBalances(gomock.Any(), id).Return(s.balances, s.errBalances)
	if s.errBalances != nil || !mirror.IsAssociated(s.balances, testCollection) {
		return
	}
	m.EXPECT().GetOwnedNFTs(gomock.Any(), id, testCollection).Return(s.nfts, s.errNFTs)
}

func TestEvaluate(t *testing.T) {
	associated := []mirror.TokenBalance{{TokenID: "0.0.100", Balance: 3}, {TokenID: testCollection, Balance: 0}}
	for _, table := range []struct {
		description string
		state       mirrorState
		wantErr     apierror.Kind
		wantReason  Reason
		wantSerials []int64
	}{
		{
			description: "invalid: account not found",
			state:       mirrorState{errAccount: fmt.Errorf("get account: %w", mirror.ErrNotFound)},
			wantReason:  ReasonAccountNotFound,
		},
		{
			description: "invalid: account lookup failure",
			state:       mirrorState{errAccount: fmt.Errorf("mirror node status 503")},
			wantErr:     apierror.DownstreamUnavailable,
		},
		{
			description: "invalid: not associated",
			state:       mirrorState{balances: []mirror.TokenBalance{{TokenID: "0.0.100", Balance: 3}}},
			wantReason:  ReasonNotAssociated,
		},
		{
			description: "invalid: no token balances",
			state:       mirrorState{},
			wantReason:  ReasonNotAssociated,
		},
		{
			description: "invalid: balances lookup failure",
			state:       mirrorState{errBalances: fmt.Errorf("timeout")},
			wantErr:     apierror.DownstreamUnavailable,
		},
		{
			description: "invalid: already owns",
			state: mirrorState{balances: associated, nfts: []mirror.NFT{
				{AccountID: "0.0.1002", TokenID: testCollection, SerialNumber: 7},
			}},
			wantReason:  ReasonAlreadyOwns,
			wantSerials: []int64{7},
		},
		{
			description: "invalid: nft lookup failure",
			state:       mirrorState{balances: associated, errNFTs: fmt.Errorf("timeout")},
			wantErr:     apierror.DownstreamUnavailable,
		},
		{
			description: "valid",
			state:       mirrorState{balances: associated},
			wantReason:  ReasonOK,
			wantSerials: []int64{},
		},
	} {
		func() {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			m := mocksMirror.NewMockClient(ctrl)
			table.state.expect(m, "0.0.1002")

			engine := Engine{Mirror: m, Collection: testCollection}
			result, err := engine.Evaluate(context.Background(), "0.0.1002")
			if got, want := apierror.KindOf(err), table.wantErr; got != want {
				t.Errorf("%s: got error kind %q, wanted %q (err: %v)", table.description, got, want, err)
				return
			}
			if err != nil {
				return
			}
			if got, want := result.Reason, table.wantReason; got != want {
				t.Errorf("%s: got reason %q, wanted %q", table.description, got, want)
			}
			if got, want := result.Eligible, table.wantReason == ReasonOK; got != want {
				t.Errorf("%s: got eligible %v, wanted %v", table.description, got, want)
			}
			if table.wantSerials != nil && !reflect.DeepEqual(result.OwnedSerials, table.wantSerials) {
				t.Errorf("%s: got serials %v, wanted %v", table.description, result.OwnedSerials, table.wantSerials)
			}
			if got, want := result.Remediation != nil, table.wantReason == ReasonNotAssociated; got != want {
				t.Errorf("%s: got remediation %v, wanted %v", table.description, got, want)
			}
		}()
	}
}

func TestEvaluateUninitialized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	// No mirror calls expected.
	engine := Engine{Mirror: mocksMirror.NewMockClient(ctrl)}
	_, err := engine.Evaluate(context.Background(), "0.0.1002")
	if got, want := apierror.KindOf(err), apierror.CollectionUninitialized; got != want {
		t.Errorf("got error kind %q, wanted %q", got, want)
	}
}

// Ownership wins over every other signal: an account reported to own an
// NFT is never eligible.
func TestEvaluateOwnershipNeverEligible(t *testing.T) {
	for _, balance := range []int64{0, 1, 5} {
		func() {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			m := mocksMirror.NewMockClient(ctrl)
			state := mirrorState{
				balances: []mirror.TokenBalance{{TokenID: testCollection, Balance: balance}},
				nfts:     []mirror.NFT{{SerialNumber: 1}, {SerialNumber: 2}},
			}
			state.expect(m, "0.0.1002")

			engine := Engine{Mirror: m, Collection: testCollection}
			result, err := engine.Evaluate(context.Background(), "0.0.1002")
			if err != nil {
				t.Fatal(err)
			}
			if result.Eligible || !result.AlreadyOwns() {
				t.Errorf("balance %d: got eligible %v, already owns %v", balance, result.Eligible, result.AlreadyOwns())
			}
		}()
	}
}

func TestResultErr(t *testing.T) {
	for _, table := range []struct {
		description string
		result      Result
		wantKind    apierror.Kind
		wantData    any
	}{
		{
			description: "eligible",
			result:      Result{Eligible: true, Reason: ReasonOK},
		},
		{
			description: "not found",
			result:      Result{Reason: ReasonAccountNotFound},
			wantKind:    apierror.NotFound,
		},
		{
			description: "not associated",
			result: Result{Reason: ReasonNotAssociated, Remediation: &Remediation{
				TokenID: testCollection, Instructions: associationInstructions(testCollection),
			}},
			wantKind: apierror.NotAssociated,
			wantData: map[string]any{
				"tokenId":             testCollection,
				"associationRequired": true,
				"instructions":        associationInstructions(testCollection),
			},
		},
		{
			description: "already owns",
			result:      Result{Reason: ReasonAlreadyOwns, Associated: true, OwnedSerials: []int64{7}},
			wantKind:    apierror.AlreadyOwns,
			wantData:    map[string]any{"ownedNFTCount": 1, "serialNumbers": []int64{7}},
		},
	} {
		err := table.result.Err()
		if got, want := apierror.KindOf(err), table.wantKind; got != want {
			t.Errorf("%s: got kind %q, wanted %q", table.description, got, want)
			continue
		}
		if err == nil {
			continue
		}
		if got := apierror.From(err).Data; !reflect.DeepEqual(got, table.wantData) {
			t.Errorf("%s: got data %v, wanted %v", table.description, got, table.wantData)
		}
	}
}
