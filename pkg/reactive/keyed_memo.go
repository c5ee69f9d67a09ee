package reactive

// keyedMemoSlot holds the cached dependency and result for one
// NewKeyedMemo call site.
type keyedMemoSlot[D, T any] struct {
	dep    D
	value  T
	seeded bool
}

// KeyedMemoOption configures a NewKeyedMemo call site.
type KeyedMemoOption[D any] func(*keyedMemoOptions[D])

type keyedMemoOptions[D any] struct {
	equal func(D, D) bool
}

// KeyedEquals sets the equality used to decide whether the dependency
// changed. The default is DefaultEquals.
func KeyedEquals[D any](fn func(D, D) bool) KeyedMemoOption[D] {
	return func(o *keyedMemoOptions[D]) {
		o.equal = fn
	}
}

// NewKeyedMemo memoizes compute against an explicit dependency value.
// The computation runs on the first render and again only on renders where
// dep differs from the previously observed dep under the configured
// equality; otherwise the cached result is returned, with stable identity.
//
// Unlike Memo, nothing is tracked reactively: the caller names the
// dependency explicitly. Outside a render there is no slot to cache in, so
// compute runs every call.
//
// Example:
//
//	rows := reactive.NewKeyedMemo(filter, func(f Filter) []Row {
//	    return applyFilter(allRows, f)
//	})
func NewKeyedMemo[D, T any](dep D, compute func(D) T, opts ...KeyedMemoOption[D]) T {
	o := keyedMemoOptions[D]{equal: DefaultEquals[D]}
	for _, opt := range opts {
		opt(&o)
	}

	owner := getCurrentOwner()
	inRender := owner != nil && isInRender()

	if owner != nil {
		owner.TrackHook(HookKeyedMemo)
	}
	if !inRender {
		return compute(dep)
	}

	if slot := owner.UseHookSlot(); slot != nil {
		km, ok := slot.(*keyedMemoSlot[D, T])
		if !ok {
			panic("reflow: hook slot type mismatch for KeyedMemo")
		}
		if km.seeded && o.equal(km.dep, dep) {
			return km.value
		}
		km.dep = dep
		km.value = compute(dep)
		km.seeded = true
		return km.value
	}

	km := &keyedMemoSlot[D, T]{
		dep:    dep,
		value:  compute(dep),
		seeded: true,
	}
	owner.SetHookSlot(km)
	return km.value
}
