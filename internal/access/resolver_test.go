package access_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mlavigne/client-management/internal/access"
	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
)

func TestAccess(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Access Suite")
}

// fakeStore answers resolver lookups from maps; nil means absent.
type fakeStore struct {
	grants   map[string]*accessDatamodel.UserViewAccess
	profiles map[string]*accessDatamodel.UserProfile
	defaults map[string]*accessDatamodel.AccessTypeView
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		grants:   make(map[string]*accessDatamodel.UserViewAccess),
		profiles: make(map[string]*accessDatamodel.UserProfile),
		defaults: make(map[string]*accessDatamodel.AccessTypeView),
	}
}

func (s *fakeStore) ExplicitGrant(_ context.Context, userID, viewCode string) (*accessDatamodel.UserViewAccess, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.grants[userID+"/"+viewCode], nil
}

func (s *fakeStore) Profile(_ context.Context, userID string) (*accessDatamodel.UserProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles[userID], nil
}

func (s *fakeStore) DefaultGrant(_ context.Context, accessTypeCode, viewCode string) (*accessDatamodel.AccessTypeView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.defaults[accessTypeCode+"/"+viewCode], nil
}

var _ = Describe("Resolver", func() {
	var (
		store    *fakeStore
		resolver *access.Resolver
		ctx      context.Context
	)

	BeforeEach(func() {
		store = newFakeStore()
		resolver = access.NewResolver(store, slog.Default())
		ctx = context.Background()
	})

	grant := func(userID, viewCode, privilege string) {
		store.grants[userID+"/"+viewCode] = &accessDatamodel.UserViewAccess{
			UserID: userID, ViewCode: viewCode, PrivilegeCode: privilege,
		}
	}
	profile := func(userID, accessType string) {
		store.profiles[userID] = &accessDatamodel.UserProfile{
			UserID: userID, AccessTypeCode: accessType,
		}
	}
	def := func(accessType, viewCode, privilege string) {
		store.defaults[accessType+"/"+viewCode] = &accessDatamodel.AccessTypeView{
			AccessTypeCode: accessType, ViewCode: viewCode, PrivilegeCode: privilege,
		}
	}

	It("resolves to none when nothing grants access", func() {
		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeNone))
	})

	It("uses the access-type default when no explicit grant exists", func() {
		profile("u1", "AGENT")
		def("AGENT", "CLIENTS", "write")

		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeWrite))
	})

	It("lets an explicit grant override the default upward", func() {
		profile("u1", "LECTURE")
		def("LECTURE", "CLIENTS", "read")
		grant("u1", "CLIENTS", "admin")

		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeAdmin))
	})

	It("lets an explicit none revoke what the default would grant", func() {
		profile("u1", "AGENT")
		def("AGENT", "CLIENTS", "write")
		grant("u1", "CLIENTS", "none")

		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeNone))
	})

	It("resolves to none for a profile with no default on the view", func() {
		profile("u1", "AGENT")
		def("AGENT", "OTHER_VIEW", "admin")

		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeNone))
	})

	It("treats a malformed stored privilege as none", func() {
		grant("u1", "CLIENTS", "superuser")

		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeNone))
	})

	It("denies on lookup failure", func() {
		profile("u1", "AGENT")
		def("AGENT", "CLIENTS", "admin")
		store.err = errors.New("connection refused")

		Expect(resolver.Resolve(ctx, "u1", "CLIENTS")).To(Equal(access.PrivilegeNone))
	})

	It("denies blank identities outright", func() {
		Expect(resolver.Resolve(ctx, "", "CLIENTS")).To(Equal(access.PrivilegeNone))
		Expect(resolver.Resolve(ctx, "u1", "")).To(Equal(access.PrivilegeNone))
	})

	Describe("Authorize", func() {
		It("applies the total order none < read < write < admin", func() {
			profile("u1", "AGENT")
			def("AGENT", "CLIENTS", "write")

			Expect(resolver.Authorize(ctx, "u1", "CLIENTS", access.PrivilegeRead)).To(BeTrue())
			Expect(resolver.Authorize(ctx, "u1", "CLIENTS", access.PrivilegeWrite)).To(BeTrue())
			Expect(resolver.Authorize(ctx, "u1", "CLIENTS", access.PrivilegeAdmin)).To(BeFalse())
		})
	})
})

var _ = Describe("ParsePrivilege", func() {
	It("accepts the stored codes case-insensitively", func() {
		Expect(access.ParsePrivilege("admin")).To(Equal(access.PrivilegeAdmin))
		Expect(access.ParsePrivilege(" Write ")).To(Equal(access.PrivilegeWrite))
		Expect(access.ParsePrivilege("READ")).To(Equal(access.PrivilegeRead))
		Expect(access.ParsePrivilege("none")).To(Equal(access.PrivilegeNone))
	})

	It("maps anything unknown to none", func() {
		Expect(access.ParsePrivilege("root")).To(Equal(access.PrivilegeNone))
		Expect(access.ParsePrivilege("")).To(Equal(access.PrivilegeNone))
	})
})
