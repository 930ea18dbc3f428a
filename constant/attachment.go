package constant

// 附件台账（Attachment Ledger）使用的归属方类型与插槽名。
// Attach 操作会校验传入的 ownerType / slotName 是否在这里登记过，
// 未登记的组合按校验失败处理。
const (
	// OwnerTypePost 帖子作为附件归属方时的类型标识（对应 attachments.owner_type 列）。
	OwnerTypePost = "post"

	// SlotPostImages 帖子配图插槽，支持同一帖子挂载多张图片。
	SlotPostImages = "images"
)

// StorageKeyPrefixImages 对象存储键的业务前缀。
// 完整键形如: <envPrefix>/blog/images/YYYYMMDD/<uuid>.<ext>，
// 其中 envPrefix 来自配置，用于让 dev/test/prod 共享同一个桶时互不冲突。
const StorageKeyPrefixImages = "blog/images/"
