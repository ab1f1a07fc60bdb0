package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// CartClient calls a remote storefront.CartService on behalf of one session.
type CartClient struct {
	cc    grpc.ClientConnInterface
	conn  *grpc.ClientConn
	token string
	log   *logrus.Logger
}

func NewCartClient(cc grpc.ClientConnInterface, token string, logger *logrus.Logger) *CartClient {
	return &CartClient{cc: cc, token: token, log: logger}
}

// DialCartClient opens its own connection; Close releases it.
func DialCartClient(target, token string, logger *logrus.Logger) (*CartClient, error) {
	logger.Infof("CartClient: Dialing gRPC target: %s", target)
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Errorf("CartClient: Failed to dial %s: %v", target, err)
		return nil, fmt.Errorf("failed to connect to cart service at %s: %w", target, err)
	}
	c := NewCartClient(conn, token, logger)
	c.conn = conn
	return c, nil
}

func (c *CartClient) Close() error {
	if c.conn != nil {
		c.log.Info("CartClient: Closing gRPC connection")
		return c.conn.Close()
	}
	return nil
}

func (c *CartClient) invoke(ctx context.Context, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, authTokenKey, c.token)

	out := new(structpb.Struct)
	c.log.Debugf("CartClient(gRPC): Calling %s", method)
	if err := c.cc.Invoke(ctx, "/"+cartServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) GetCart(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetCart", nil)
}

func (c *CartClient) AddToCart(ctx context.Context, productID string, quantity int) (*structpb.Struct, error) {
	return c.invoke(ctx, "AddToCart", map[string]interface{}{"productId": productID, "quantity": quantity})
}

func (c *CartClient) UpdateQuantity(ctx context.Context, cartID string, quantity int) (*structpb.Struct, error) {
	return c.invoke(ctx, "UpdateQuantity", map[string]interface{}{"cartId": cartID, "quantity": quantity})
}

func (c *CartClient) RemoveItem(ctx context.Context, cartID string) (*structpb.Struct, error) {
	return c.invoke(ctx, "RemoveItem", map[string]interface{}{"cartId": cartID})
}

func (c *CartClient) OpenCheckout(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "OpenCheckout", nil)
}

func (c *CartClient) CancelCheckout(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "CancelCheckout", nil)
}

func (c *CartClient) Checkout(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "Checkout", nil)
}
