package usecase

// Test doubles for the external usecase_test package, which can import
// adapters without an import cycle.
var (
	NewFakeChain      = newFakeChain
	NewFakeRepository = newFakeRepository
	DiscardLogger     = discardLogger
	TestDeployer      = testDeployer
)

type FakeVerifier = fakeVerifier
