// Package pubsub wraps the Google Cloud Pub/Sub v2 client for the orders
// topic and its receipts subscription.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var errProjectIDRequired = errors.New("gcp project id is required")

type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

// NewClient connects and fails fast when the orders topic or subscription
// is missing, since neither is created on demand.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	ps, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	c := &Client{client: ps, projectID: project, cfg: cfg}
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"topic":        cfg.OrdersTopic,
			"subscription": cfg.OrdersSubscription,
		}), "pubsub client initialized")
	}
	return c, nil
}

// Ping checks that every configured resource exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	var errs error
	if topic := c.resourceName("topics", c.cfg.OrdersTopic); topic != "" {
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic})
		errs = multierr.Append(errs, lookupError("topic", topic, err))
	}
	if sub := c.resourceName("subscriptions", c.cfg.OrdersSubscription); sub != "" {
		_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: sub})
		errs = multierr.Append(errs, lookupError("subscription", sub, err))
	} else {
		errs = multierr.Append(errs, errors.New("pubsub subscription name is required"))
	}
	return errs
}

func lookupError(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, name)
	default:
		return fmt.Errorf("check %s %q: %w", kind, name, err)
	}
}

// Subscription accepts a bare id or a full resource name.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	if full := c.resourceName("subscriptions", name); full != "" {
		return c.client.Subscriber(full)
	}
	return nil
}

func (c *Client) OrdersSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.OrdersSubscription)
}

// Publisher accepts a bare id or a full resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	if full := c.resourceName("topics", name); full != "" {
		return c.client.Publisher(full)
	}
	return nil
}

func (c *Client) OrdersPublisher() *pubsub.Publisher {
	return c.Publisher(c.cfg.OrdersTopic)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// resourceName expands an id to projects/<project>/<collection>/<id>.
func (c *Client) resourceName(collection, name string) string {
	name = strings.TrimSpace(name)
	if name == "" || c == nil {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+collection+"/") {
		return name
	}
	if c.projectID == "" {
		return ""
	}
	return "projects/" + c.projectID + "/" + collection + "/" + name
}
