package state

var (
	stakingConfigKeyBytes = []byte("staking/config")
	stakingAccountPrefix  = []byte("staking/account/")
	stakingAccountIndex   = []byte("staking/account-index")
)
