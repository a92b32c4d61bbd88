package main

import (
	"math"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/logic"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/session"
)

// Command names accepted by Handle and produced by the HTTP routes.
const (
	CmdAddItem           = "AddItem"
	CmdRemoveItem        = "RemoveItem"
	CmdSetQuantity       = "SetQuantity"
	CmdIncrementQuantity = "IncrementQuantity"
	CmdDecrementQuantity = "DecrementQuantity"
	CmdClearCart         = "ClearCart"
)

// Argument keys inside a command envelope.
const (
	ArgSessionID = "session_id"
	ArgCommand   = "command"
	ArgProductID = "product_id"
	ArgQuantity  = "quantity"
)

const (
	ErrMsgSessionIDRequired = "session_id is required"
	ErrMsgArgumentRequired  = "%s is required"
	ErrMsgArgumentNotNumber = "%s must be a whole number"
)

type cartRouter = evented.CommandRouter[*session.Session, logic.Outcome]

func newCartRouter(m *session.Manager) *cartRouter {
	return evented.NewCommandRouter[*session.Session, logic.Outcome](Domain).
		On(CmdAddItem, func(sess *session.Session, args *structpb.Struct) (logic.Outcome, error) {
			productID, err := int64Arg(args, ArgProductID)
			if err != nil {
				return logic.Outcome{Cart: sess.Cart()}, err
			}
			return m.Add(sess, productID)
		}).
		On(CmdRemoveItem, func(sess *session.Session, args *structpb.Struct) (logic.Outcome, error) {
			productID, err := int64Arg(args, ArgProductID)
			if err != nil {
				return logic.Outcome{Cart: sess.Cart()}, err
			}
			return m.Remove(sess, productID)
		}).
		On(CmdSetQuantity, func(sess *session.Session, args *structpb.Struct) (logic.Outcome, error) {
			productID, err := int64Arg(args, ArgProductID)
			if err != nil {
				return logic.Outcome{Cart: sess.Cart()}, err
			}
			quantity, err := int64Arg(args, ArgQuantity)
			if err != nil {
				return logic.Outcome{Cart: sess.Cart()}, err
			}
			return m.SetQuantity(sess, productID, clampInt32(quantity))
		}).
		On(CmdIncrementQuantity, func(sess *session.Session, args *structpb.Struct) (logic.Outcome, error) {
			productID, err := int64Arg(args, ArgProductID)
			if err != nil {
				return logic.Outcome{Cart: sess.Cart()}, err
			}
			return m.Increment(sess, productID)
		}).
		On(CmdDecrementQuantity, func(sess *session.Session, args *structpb.Struct) (logic.Outcome, error) {
			productID, err := int64Arg(args, ArgProductID)
			if err != nil {
				return logic.Outcome{Cart: sess.Cart()}, err
			}
			return m.Decrement(sess, productID)
		}).
		On(CmdClearCart, func(sess *session.Session, _ *structpb.Struct) (logic.Outcome, error) {
			return m.Clear(sess)
		})
}

// int64Arg reads a whole-number argument. Struct numbers are doubles, so
// fractional values are rejected rather than truncated, and integers past
// 2^53 must arrive as decimal strings to keep every digit.
func int64Arg(args *structpb.Struct, key string) (int64, error) {
	v, ok := args.GetFields()[key]
	if !ok {
		return 0, evented.NewInvalidArgumentf(ErrMsgArgumentRequired, key)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, evented.NewInvalidArgumentf(ErrMsgArgumentNotNumber, key)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f != math.Trunc(f) || f > maxExactInt || f < -maxExactInt {
			return 0, evented.NewInvalidArgumentf(ErrMsgArgumentNotNumber, key)
		}
		return int64(f), nil
	default:
		return 0, evented.NewInvalidArgumentf(ErrMsgArgumentNotNumber, key)
	}
}

// clampInt32 saturates out-of-range quantities so that oversized values
// still reach the engine's own checks.
func clampInt32(n int64) int32 {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	default:
		return int32(n)
	}
}
