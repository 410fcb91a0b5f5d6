package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/queue"
	"github.com/iliyamo/food-ordering/internal/repository"
)

const publishTimeout = 3 * time.Second

// orderFlow is shared by the buyer and seller workflows: it runs state
// machine transitions and announces their outcome.
type orderFlow struct {
	orders OrderLedger
	events EventPublisher
	log    logrus.FieldLogger
}

// transition applies (party, action) to the order scoped by scopeID.
func (f orderFlow) transition(ctx context.Context, p model.Party, a model.Action, orderID, scopeID uint64) (*model.Order, error) {
	t, ok := model.LookupTransition(p, a)
	if !ok {
		return nil, apperror.Internal("unsupported order action", errors.New(string(p)+" "+string(a)))
	}
	o, applied, err := f.orders.Transition(ctx, t, repository.ScopeFor(p), orderID, scopeID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Internal("failed to update order", err)
	}
	if !applied {
		return nil, apperror.InvalidState("%s", t.Rejection(o.Status))
	}
	f.publish(ctx, string(p)+"."+string(a), o)
	return o, nil
}

func (f orderFlow) publish(ctx context.Context, action string, o *model.Order) {
	if f.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := f.events.PublishOrderEvent(ctx, queue.NewOrderEvent(action, o)); err != nil {
		f.log.WithError(err).WithFields(logrus.Fields{"order_id": o.ID, "action": action}).Warn("order event not published")
	}
}
