package features

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/logic"
)

type cartTestContext struct {
	catalog *catalog.Catalog
	logic   logic.CartLogic
	cart    logic.Cart
	history *evented.EventBook
	outcome logic.Outcome
	err     error
}

func (c *cartTestContext) reset() {
	c.catalog = catalog.Default()
	c.logic = logic.NewCartLogic()
	c.cart = logic.Cart{}
	c.history = evented.NewEventBook(evented.Cover{Domain: "cart", Root: uuid.New()})
	c.outcome = logic.Outcome{}
	c.err = nil
}

func (c *cartTestContext) record(outcome logic.Outcome, err error) error {
	c.outcome, c.err = outcome, err
	if err != nil {
		return nil
	}
	c.cart = outcome.Cart
	return c.history.Append(outcome.Events...)
}

func (c *cartTestContext) anEmptyCart() error {
	c.cart = logic.Cart{}
	return nil
}

func (c *cartTestContext) iAddProduct(id int) error {
	product, ok := c.catalog.Lookup(int64(id))
	if !ok {
		return fmt.Errorf("product %d is not in the catalog", id)
	}
	return c.record(c.logic.HandleAddItem(c.cart, product))
}

func (c *cartTestContext) iRemoveProduct(id int) error {
	return c.record(c.logic.HandleRemoveItem(c.cart, int64(id)))
}

func (c *cartTestContext) iSetTheQuantityOfProductTo(id, quantity int) error {
	return c.record(c.logic.HandleSetQuantity(c.cart, int64(id), int32(quantity)))
}

func (c *cartTestContext) iIncrementProduct(id int) error {
	return c.record(c.logic.HandleIncrementQuantity(c.cart, int64(id)))
}

func (c *cartTestContext) iDecrementProduct(id int) error {
	return c.record(c.logic.HandleDecrementQuantity(c.cart, int64(id)))
}

func (c *cartTestContext) iClearTheCart() error {
	return c.record(c.logic.HandleClearCart(c.cart))
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if c.cart.Len() != n {
		return fmt.Errorf("expected %d lines, got %d", n, c.cart.Len())
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(id, quantity int) error {
	item, ok := c.cart.Find(int64(id))
	if !ok {
		return fmt.Errorf("product %d is not in the cart", id)
	}
	if int(item.Quantity) != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, item.Quantity)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total int) error {
	if c.cart.Total() != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, c.cart.Total())
	}
	return nil
}

func (c *cartTestContext) theItemCountIs(count int) error {
	if c.cart.ItemCount() != int64(count) {
		return fmt.Errorf("expected item count %d, got %d", count, c.cart.ItemCount())
	}
	return nil
}

func (c *cartTestContext) theCartLinesAre(list string) error {
	var got []string
	for _, item := range c.cart.Items() {
		got = append(got, strconv.FormatInt(item.ID, 10))
	}
	if strings.Join(got, ",") != list {
		return fmt.Errorf("expected lines %q, got %q", list, strings.Join(got, ","))
	}
	return nil
}

func (c *cartTestContext) anAddedNotificationIsEmittedFor(kind, name string) error {
	if err := c.aNotificationIsEmitted(kind); err != nil {
		return err
	}
	if got := c.outcome.Notifications[0].ProductName; got != name {
		return fmt.Errorf("expected product name %q, got %q", name, got)
	}
	return nil
}

func (c *cartTestContext) aNotificationIsEmitted(kind string) error {
	if c.err != nil {
		return fmt.Errorf("expected notification but got error: %v", c.err)
	}
	if len(c.outcome.Notifications) != 1 {
		return fmt.Errorf("expected 1 notification, got %d", len(c.outcome.Notifications))
	}
	if got := string(c.outcome.Notifications[0].Kind); got != kind {
		return fmt.Errorf("expected %q notification, got %q", kind, got)
	}
	return nil
}

func (c *cartTestContext) noNotificationIsEmitted() error {
	if len(c.outcome.Notifications) != 0 {
		return fmt.Errorf("expected no notifications, got %v", c.outcome.Notifications)
	}
	return nil
}

func (c *cartTestContext) theEmittedEventsAre(list string) error {
	var got []string
	for _, event := range c.outcome.Events {
		got = append(got, event.EventType())
	}
	if strings.Join(got, ",") != list {
		return fmt.Errorf("expected events %q, got %q", list, strings.Join(got, ","))
	}
	return nil
}

func (c *cartTestContext) noEventsAreEmitted() error {
	if c.err != nil {
		return fmt.Errorf("expected no-op but got error: %v", c.err)
	}
	if c.outcome.Changed() {
		return fmt.Errorf("expected no events, got %d", len(c.outcome.Events))
	}
	return nil
}

func (c *cartTestContext) theCommandFailsWithStatus(status string) error {
	if c.err == nil {
		return errors.New("expected error but command succeeded")
	}
	cmdErr := evented.AsCommandError(c.err)
	if cmdErr == nil {
		return fmt.Errorf("expected CommandError, got %T", c.err)
	}
	if cmdErr.Code.String() != status {
		return fmt.Errorf("expected status %s, got %s", status, cmdErr.Code)
	}
	return nil
}

func (c *cartTestContext) theErrorMessageContains(substr string) error {
	if c.err == nil {
		return errors.New("expected error but command succeeded")
	}
	if !strings.Contains(c.err.Error(), substr) {
		return fmt.Errorf("expected error containing %q, got %q", substr, c.err.Error())
	}
	return nil
}

func (c *cartTestContext) rebuildingGivesTheCurrentCart() error {
	rebuilt := c.logic.RebuildState(c.history)
	if !reflect.DeepEqual(rebuilt.Items(), c.cart.Items()) {
		return fmt.Errorf("rebuilt cart %+v differs from %+v", rebuilt.Items(), c.cart.Items())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product (\d+)$`, tc.iAddProduct)
	ctx.Step(`^I remove product (\d+)$`, tc.iRemoveProduct)
	ctx.Step(`^I set the quantity of product (\d+) to (-?\d+)$`, tc.iSetTheQuantityOfProductTo)
	ctx.Step(`^I increment product (\d+)$`, tc.iIncrementProduct)
	ctx.Step(`^I decrement product (\d+)$`, tc.iDecrementProduct)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^product (\d+) has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the item count is (\d+)$`, tc.theItemCountIs)
	ctx.Step(`^the cart lines are "([^"]*)"$`, tc.theCartLinesAre)
	ctx.Step(`^an? "([^"]*)" notification is emitted for "(.*)"$`, tc.anAddedNotificationIsEmittedFor)
	ctx.Step(`^an? "([^"]*)" notification is emitted$`, tc.aNotificationIsEmitted)
	ctx.Step(`^no notification is emitted$`, tc.noNotificationIsEmitted)
	ctx.Step(`^the emitted events are "([^"]*)"$`, tc.theEmittedEventsAre)
	ctx.Step(`^no events are emitted$`, tc.noEventsAreEmitted)
	ctx.Step(`^the command fails with status "([^"]*)"$`, tc.theCommandFailsWithStatus)
	ctx.Step(`^the error message contains "([^"]*)"$`, tc.theErrorMessageContains)
	ctx.Step(`^rebuilding the cart from its history gives the current cart$`, tc.rebuildingGivesTheCurrentCart)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
