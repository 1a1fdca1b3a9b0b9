// internal/app/system/txn/txn.go

// Package txn runs multi-document writes inside a MongoDB transaction, with
// a sequential fallback for deployments that do not support transactions
// (standalone mongod without a replica set).
//
// The accept-payment flow writes two documents (payment request status +
// contribution ledger upsert); running both under one transaction closes the
// crash window between the writes. On topologies without transaction support
// the fallback keeps the original ordering: status first, ledger second;
// each individual write is still atomic and the ledger upsert is idempotent,
// so a retry converges.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on client. When the server reports
// that transactions are unsupported, fn is re-run outside a transaction.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithoutTxn(ctx, log, fn)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil && IsNotSupported(err) {
		return runWithoutTxn(ctx, log, fn)
	}
	return err
}

func runWithoutTxn(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Warn("transactions unsupported by deployment; running writes sequentially")
	}
	return fn(ctx)
}

// Server error codes that indicate the deployment cannot run transactions.
//
//	20  IllegalOperation (e.g. "Transaction numbers are only allowed on a
//	    replica set member or mongos")
//	51  also surfaced as IllegalOperation on older servers
//	263 OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions (as opposed to the transaction merely
// failing).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return notSupportedCodes[ce.Code]
	}

	// Fall back to message sniffing; drivers and proxies wrap these errors
	// inconsistently.
	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
