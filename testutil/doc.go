// 版权所有 2025 ModFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
Package testutil 提供通用测试辅助。

# 概述

testutil 包含跨包复用的测试工具：带超时的测试上下文、轮询断言，
以及 JSON 序列化辅助。分类服务商的模拟实现位于 testutil/mocks，
常用的审核输入与服务商输出样例位于 testutil/fixtures。

# 使用方法

	ctx := testutil.TestContext(t)
	testutil.AssertEventuallyTrue(t, func() bool { return done() }, 5*time.Second)
*/
package testutil
