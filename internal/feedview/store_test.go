package feedview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/internal/model"
)

func uintPtr(v uint) *uint { return &v }

// newTestStore builds a store with one tenant, one missionary (profile
// 1, missionary 1) and one donor (profile 2, donor 1) following them.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.UpsertProfile(model.Profile{ID: 1, UserID: 1, TenantID: 1, Role: model.RoleMissionary, FirstName: "Maria", LastName: "Lopez"})
	s.UpsertProfile(model.Profile{ID: 2, UserID: 2, TenantID: 1, Role: model.RoleDonor, FirstName: "Dan"})
	s.UpsertMissionary(model.Missionary{ID: 1, ProfileID: 1, TenantID: 1})
	s.UpsertDonor(model.Donor{ID: 1, ProfileID: 2, TenantID: 1})
	s.UpsertFollow(model.Follow{ID: 1, TenantID: 1, DonorID: 1, MissionaryID: 1})
	return s
}

func TestDonorFeed_PublishedOnly(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Content: "visible", Status: model.PostStatusPublished, PostType: model.PostTypeUpdate})
	s.UpsertPost(model.Post{ID: 2, TenantID: 1, MissionaryID: uintPtr(1), Content: "hidden", Status: model.PostStatusHidden, PostType: model.PostTypeUpdate})
	s.UpsertPost(model.Post{ID: 3, TenantID: 1, MissionaryID: uintPtr(1), Content: "flagged", Status: model.PostStatusFlagged, PostType: model.PostTypeUpdate})

	feed := s.DonorFeed(1)
	require.Len(t, feed, 1)
	assert.Equal(t, "visible", feed[0].Content)
	assert.Equal(t, "Maria Lopez", feed[0].AuthorName)
	assert.False(t, feed[0].IsOrgPost)
}

func TestDonorFeed_OnlyFollowedMissionaries(t *testing.T) {
	s := newTestStore(t)
	s.UpsertProfile(model.Profile{ID: 3, UserID: 3, TenantID: 1, Role: model.RoleMissionary, FirstName: "Omar"})
	s.UpsertMissionary(model.Missionary{ID: 2, ProfileID: 3, TenantID: 1})
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Content: "followed", Status: model.PostStatusPublished})
	s.UpsertPost(model.Post{ID: 2, TenantID: 1, MissionaryID: uintPtr(2), Content: "not followed", Status: model.PostStatusPublished})

	feed := s.DonorFeed(1)
	require.Len(t, feed, 1)
	assert.Equal(t, "followed", feed[0].Content)
}

func TestDonorFeed_PreferencesFilterPostTypes(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Content: "update", Status: model.PostStatusPublished, PostType: model.PostTypeUpdate})
	s.UpsertPost(model.Post{ID: 2, TenantID: 1, MissionaryID: uintPtr(1), Content: "prayer", Status: model.PostStatusPublished, PostType: model.PostTypePrayer})
	s.UpsertPreferences(model.DonorFeedPreferences{ID: 1, DonorID: 1, TenantID: 1,
		ShowUpdates: true, ShowPrayers: false, ShowAnnouncements: true, FollowsOrg: true})

	feed := s.DonorFeed(1)
	require.Len(t, feed, 1)
	assert.Equal(t, "update", feed[0].Content)
}

func TestDonorFeed_OrgPostsFollowPreference(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, Content: "org news", Status: model.PostStatusPublished, PostType: model.PostTypeAnnouncement})

	// default (no preferences row) includes org posts
	feed := s.DonorFeed(1)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].IsOrgPost)

	s.UpsertPreferences(model.DonorFeedPreferences{ID: 1, DonorID: 1, TenantID: 1,
		ShowUpdates: true, ShowPrayers: true, ShowAnnouncements: true, FollowsOrg: false})
	assert.Empty(t, s.DonorFeed(1))
}

func TestDonorFeed_PinnedFirstThenNewest(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Content: "old", Status: model.PostStatusPublished, CreatedAt: base.Add(-2 * time.Hour)})
	s.UpsertPost(model.Post{ID: 2, TenantID: 1, MissionaryID: uintPtr(1), Content: "new", Status: model.PostStatusPublished, CreatedAt: base})
	s.UpsertPost(model.Post{ID: 3, TenantID: 1, MissionaryID: uintPtr(1), Content: "pinned", Status: model.PostStatusPublished, IsPinned: true, CreatedAt: base.Add(-24 * time.Hour)})

	feed := s.DonorFeed(1)
	require.Len(t, feed, 3)
	assert.Equal(t, "pinned", feed[0].Content)
	assert.Equal(t, "new", feed[1].Content)
	assert.Equal(t, "old", feed[2].Content)
}

func TestDonorFeed_TenantIsolation(t *testing.T) {
	s := newTestStore(t)
	// another tenant's org post must never surface in this donor's feed
	s.UpsertPost(model.Post{ID: 1, TenantID: 2, Content: "other org", Status: model.PostStatusPublished})
	assert.Empty(t, s.DonorFeed(1))
}

func TestCommentThread_RootsAndReplies(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()
	s.UpsertComment(model.PostComment{ID: 1, TenantID: 1, PostID: 5, UserID: 2, Content: "first root", CreatedAt: base.Add(-time.Hour)})
	s.UpsertComment(model.PostComment{ID: 2, TenantID: 1, PostID: 5, UserID: 2, Content: "second root", CreatedAt: base})
	s.UpsertComment(model.PostComment{ID: 3, TenantID: 1, PostID: 5, UserID: 1, ParentID: uintPtr(1), Content: "reply", CreatedAt: base})

	thread := s.CommentThread(5)
	require.Len(t, thread, 2)
	assert.Equal(t, "second root", thread[0].Content) // newest root first
	assert.Empty(t, thread[0].Replies)
	require.Len(t, thread[1].Replies, 1)
	assert.Equal(t, "reply", thread[1].Replies[0].Content)
}

func TestDeleteComment_CascadesOneLevelOnly(t *testing.T) {
	s := newTestStore(t)
	s.UpsertComment(model.PostComment{ID: 1, TenantID: 1, PostID: 5, UserID: 2, Content: "root"})
	s.UpsertComment(model.PostComment{ID: 2, TenantID: 1, PostID: 5, UserID: 1, ParentID: uintPtr(1), Content: "reply A"})
	s.UpsertComment(model.PostComment{ID: 3, TenantID: 1, PostID: 5, UserID: 1, ParentID: uintPtr(1), Content: "reply B"})
	s.UpsertComment(model.PostComment{ID: 4, TenantID: 1, PostID: 5, UserID: 2, ParentID: uintPtr(2), Content: "nested"})
	s.UpsertComment(model.PostComment{ID: 5, TenantID: 1, PostID: 5, UserID: 2, Content: "sibling root"})

	s.DeleteComment(1)

	s.mu.RLock()
	_, rootExists := s.comments[1]
	_, replyAExists := s.comments[2]
	_, replyBExists := s.comments[3]
	_, nestedExists := s.comments[4]
	_, siblingExists := s.comments[5]
	s.mu.RUnlock()

	assert.False(t, rootExists)
	assert.False(t, replyAExists)
	assert.False(t, replyBExists)
	assert.True(t, nestedExists, "cascade must stop one level down")
	assert.True(t, siblingExists)
}

func TestDeleteComment_ReplyDoesNotDeleteParent(t *testing.T) {
	s := newTestStore(t)
	s.UpsertComment(model.PostComment{ID: 1, TenantID: 1, PostID: 5, UserID: 2, Content: "root"})
	s.UpsertComment(model.PostComment{ID: 2, TenantID: 1, PostID: 5, UserID: 1, ParentID: uintPtr(1), Content: "reply"})

	s.DeleteComment(2)

	thread := s.CommentThread(5)
	require.Len(t, thread, 1)
	assert.Equal(t, "root", thread[0].Content)
	assert.Empty(t, thread[0].Replies)
}

func TestDeletePost_RemovesCommentsAtAnyDepth(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 5, TenantID: 1, MissionaryID: uintPtr(1), Content: "p", Status: model.PostStatusPublished})
	s.UpsertComment(model.PostComment{ID: 1, TenantID: 1, PostID: 5, UserID: 2, Content: "root"})
	s.UpsertComment(model.PostComment{ID: 2, TenantID: 1, PostID: 5, UserID: 1, ParentID: uintPtr(1), Content: "reply"})
	s.UpsertComment(model.PostComment{ID: 3, TenantID: 1, PostID: 5, UserID: 2, ParentID: uintPtr(2), Content: "nested"})

	s.DeletePost(5)

	assert.Empty(t, s.CommentThread(5))
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Empty(t, s.comments)
	assert.NotContains(t, s.posts, uint(5))
}

func TestSupporterList_Aggregates(t *testing.T) {
	s := newTestStore(t)
	s.UpsertDonation(model.Donation{ID: 1, TenantID: 1, DonorID: 1, MissionaryID: uintPtr(1), AmountCents: 5000, Status: model.DonationStatusSucceeded})
	s.UpsertDonation(model.Donation{ID: 2, TenantID: 1, DonorID: 1, MissionaryID: uintPtr(1), AmountCents: 2500, Status: model.DonationStatusSucceeded})
	s.UpsertDonation(model.Donation{ID: 3, TenantID: 1, DonorID: 1, MissionaryID: uintPtr(1), AmountCents: 9999, Status: model.DonationStatusPending})
	// gift to someone else does not count toward missionary 1
	s.UpsertDonation(model.Donation{ID: 4, TenantID: 1, DonorID: 1, MissionaryID: uintPtr(2), AmountCents: 100, Status: model.DonationStatusSucceeded})

	supporters := s.SupporterList(1)
	require.Len(t, supporters, 1)
	assert.Equal(t, "Dan", supporters[0].Name)
	assert.Equal(t, int64(7500), supporters[0].TotalGivenCents)
	assert.Equal(t, 2, supporters[0].DonationCount)
}

func TestMissionaryFunds_Progress(t *testing.T) {
	s := newTestStore(t)
	s.UpsertFund(model.Fund{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Name: "Vehicle", GoalCents: 10000, CurrentCents: 2500, Active: true})
	s.UpsertFund(model.Fund{ID: 2, TenantID: 1, MissionaryID: uintPtr(1), Name: "Closed", GoalCents: 100, CurrentCents: 100, Active: false})

	funds := s.MissionaryFunds(1)
	require.Len(t, funds, 2)
	assert.Equal(t, "Vehicle", funds[0].Name) // active first
	assert.InDelta(t, 25.0, funds[0].PercentFunded, 0.001)
	assert.InDelta(t, 100.0, funds[1].PercentFunded, 0.001)
}

func TestTenantStats(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Status: model.PostStatusPublished})
	s.UpsertPost(model.Post{ID: 2, TenantID: 2, Content: "other tenant", Status: model.PostStatusPublished})
	s.UpsertDonation(model.Donation{ID: 1, TenantID: 1, DonorID: 1, AmountCents: 1000, Status: model.DonationStatusSucceeded})
	s.UpsertDonation(model.Donation{ID: 2, TenantID: 1, DonorID: 1, AmountCents: 500, Status: model.DonationStatusPending})

	stats := s.TenantStats(1)
	assert.Equal(t, 1, stats.PostCount)
	assert.Equal(t, 1, stats.DonorCount)
	assert.Equal(t, 2, stats.DonationCount)
	assert.Equal(t, int64(1000), stats.TotalRaisedCents)
}

func TestGivingHistory_NewestFirstWithNames(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()
	s.UpsertDonation(model.Donation{ID: 1, TenantID: 1, DonorID: 1, MissionaryID: uintPtr(1), AmountCents: 100, Status: model.DonationStatusSucceeded, CreatedAt: base.Add(-time.Hour)})
	s.UpsertDonation(model.Donation{ID: 2, TenantID: 1, DonorID: 1, AmountCents: 200, Status: model.DonationStatusPending, CreatedAt: base})

	history := s.GivingHistory(1)
	require.Len(t, history, 2)
	assert.Equal(t, uint(2), history[0].ID)
	assert.Empty(t, history[0].MissionaryName) // org gift has no recipient
	assert.Equal(t, "Maria Lopez", history[1].MissionaryName)
}

func TestUpsertPost_ReindexOnAuthorChange(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Content: "mine", Status: model.PostStatusPublished})
	require.Len(t, s.DonorFeed(1), 1)

	// reassigning the post to an unfollowed missionary drops it from the feed
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(2), Content: "mine", Status: model.PostStatusPublished})
	assert.Empty(t, s.DonorFeed(1))
}

func TestDeleteFollow_RemovesFromFeed(t *testing.T) {
	s := newTestStore(t)
	s.UpsertPost(model.Post{ID: 1, TenantID: 1, MissionaryID: uintPtr(1), Content: "p", Status: model.PostStatusPublished})
	require.Len(t, s.DonorFeed(1), 1)

	s.DeleteFollow(1)
	assert.Empty(t, s.DonorFeed(1))
}
