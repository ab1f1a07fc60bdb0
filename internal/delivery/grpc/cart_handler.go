package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const authTokenKey = "x-auth-token"

var _ CartServiceServer = (*CartHandler)(nil)

type CartHandler struct {
	cart  domain.CartUseCase
	users domain.UserUseCase
	log   *logrus.Logger
}

func NewCartHandler(cart domain.CartUseCase, users domain.UserUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{cart: cart, users: users, log: logger}
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(authTokenKey); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// withUserSession resolves the caller's session, checks the user role and
// runs op under the session lock.
func (h *CartHandler) withUserSession(ctx context.Context, method string, op func(*domain.Session) (map[string]interface{}, error)) (*structpb.Struct, error) {
	h.log.Infof("gRPC Handler: Received %s request", method)
	token := tokenFromContext(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing "+authTokenKey+" metadata")
	}

	var (
		view  *domain.CartView
		extra map[string]interface{}
	)
	err := h.users.WithSession(ctx, token, func(s *domain.Session) error {
		if s.User.Role != domain.RoleUser {
			return fmt.Errorf("%w: cart requires role %s", domain.ErrForbidden, domain.RoleUser)
		}
		var opErr error
		extra, opErr = op(s)
		view = s.Cart
		return opErr
	})
	if err != nil {
		h.log.Warnf("gRPC Handler: %s failed: %v", method, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}

	doc, err := cartDocument(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Internal server error: %v", err)
	}
	for k, v := range extra {
		doc[k] = v
	}
	out, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Internal server error: %v", err)
	}
	return out, nil
}

// cartDocument renders the view as plain JSON values so it fits a Struct.
func cartDocument(view *domain.CartView) (map[string]interface{}, error) {
	raw, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	total := view.Total()
	doc["total"] = total
	doc["totalDisplay"] = domain.FormatRupiah(total)
	return doc, nil
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok || v.GetStringValue() == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return v.GetStringValue(), nil
}

func intField(req *structpb.Struct, name string) (int, bool) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, false
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, false
	}
	return int(v.GetNumberValue()), true
}

func (h *CartHandler) GetCart(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.withUserSession(ctx, "GetCart", func(s *domain.Session) (map[string]interface{}, error) {
		return nil, h.cart.Load(ctx, s.User, s.Cart)
	})
}

func (h *CartHandler) AddToCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := stringField(req, "productId")
	if err != nil {
		return nil, err
	}
	quantity, ok := intField(req, "quantity")
	if !ok {
		quantity = 1
	}
	return h.withUserSession(ctx, "AddToCart", func(s *domain.Session) (map[string]interface{}, error) {
		return nil, h.cart.AddToCart(ctx, s.User, s.Cart, productID, quantity)
	})
}

func (h *CartHandler) UpdateQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cartID, err := stringField(req, "cartId")
	if err != nil {
		return nil, err
	}
	quantity, ok := intField(req, "quantity")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "quantity is required")
	}
	return h.withUserSession(ctx, "UpdateQuantity", func(s *domain.Session) (map[string]interface{}, error) {
		return nil, h.cart.UpdateQuantity(ctx, s.User, s.Cart, cartID, quantity)
	})
}

func (h *CartHandler) RemoveItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cartID, err := stringField(req, "cartId")
	if err != nil {
		return nil, err
	}
	return h.withUserSession(ctx, "RemoveItem", func(s *domain.Session) (map[string]interface{}, error) {
		return nil, h.cart.Remove(ctx, s.User, s.Cart, cartID)
	})
}

func (h *CartHandler) OpenCheckout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.withUserSession(ctx, "OpenCheckout", func(s *domain.Session) (map[string]interface{}, error) {
		return nil, h.cart.OpenCheckout(s.Cart)
	})
}

func (h *CartHandler) CancelCheckout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.withUserSession(ctx, "CancelCheckout", func(s *domain.Session) (map[string]interface{}, error) {
		return nil, h.cart.CancelCheckout(s.Cart)
	})
}

func (h *CartHandler) Checkout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return h.withUserSession(ctx, "Checkout", func(s *domain.Session) (map[string]interface{}, error) {
		result, err := h.cart.Checkout(ctx, s.User, s.Cart)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"removed":  float64(result.Removed),
			"redirect": result.NextPath,
		}, nil
	})
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	msg := domain.BannerMessage(err)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "Authentication required")
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, "Access denied")
	case errors.Is(err, domain.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, "Checkout is not awaiting confirmation")
	case errors.Is(err, domain.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, msg)
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, msg)
	case errors.Is(err, domain.ErrRemote):
		return status.Error(codes.Unavailable, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}
